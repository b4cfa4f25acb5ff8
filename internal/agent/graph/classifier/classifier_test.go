package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hrcopilot/server/internal/agent/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  model.Category
	}{
		{name: "policy", query: "Where is the remote work policy?", want: model.CategoryPolicy},
		{name: "handbook upper case", query: "EMPLOYEE HANDBOOK", want: model.CategoryPolicy},
		{name: "leave", query: "How do I request leave?", want: model.CategoryLeave},
		{name: "vacation", query: "vacation carry-over", want: model.CategoryLeave},
		{name: "salary", query: "When is my Salary reviewed?", want: model.CategoryCompensation},
		{name: "compensation", query: "compensation bands", want: model.CategoryCompensation},
		{name: "training", query: "Any training budget?", want: model.CategoryTraining},
		{name: "development", query: "career development plan", want: model.CategoryTraining},
		{name: "no match", query: "asdkjasd", want: model.CategoryGeneral},
		{name: "empty", query: "", want: model.CategoryGeneral},
		{name: "whitespace", query: "   \t\n", want: model.CategoryGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.query))
		})
	}
}

func TestClassify_RuleOrder(t *testing.T) {
	// LEAVE is evaluated before POLICY.
	assert.Equal(t, model.CategoryLeave, Classify("What is our leave policy?"))
	assert.Equal(t, model.CategoryLeave, Classify("handbook section on vacation"))
	// COMPENSATION is evaluated before TRAINING.
	assert.Equal(t, model.CategoryCompensation, Classify("salary during training"))
}

func TestClassify_Idempotent(t *testing.T) {
	for _, q := range []string{"What is our leave policy?", "asdkjasd", "bonus", ""} {
		first := Classify(q)
		assert.Equal(t, first, Classify(q))
		assert.True(t, first.Valid())
	}
}

func TestClassify_NoFalseSubstringHits(t *testing.T) {
	assert.Equal(t, model.CategoryGeneral, Classify("My laptop is broken"))
	assert.Equal(t, model.CategoryGeneral, Classify("Of course, thanks"))
}

// Package classifier maps a free-text HR query to a category by keyword matching.
package classifier

import (
	"strings"

	"github.com/hrcopilot/server/internal/agent/model"
)

// Rule maps any of its keywords to a category.
type Rule struct {
	Category model.Category
	Keywords []string
}

// Rules is evaluated top to bottom and the first rule with a matching keyword wins.
// Matching is plain substring search, so keywords short enough to hide inside
// unrelated words ("pto" in "laptop") are left out.
// LEAVE is checked before POLICY so "leave policy" questions land on LEAVE.
var Rules = []Rule{
	{Category: model.CategoryLeave, Keywords: []string{"leave", "vacation", "time off", "sick day", "parental"}},
	{Category: model.CategoryCompensation, Keywords: []string{"salary", "compensation", "bonus", "payroll", "wage"}},
	{Category: model.CategoryTraining, Keywords: []string{"training", "development", "learning"}},
	{Category: model.CategoryPolicy, Keywords: []string{"policy", "handbook", "guideline", "code of conduct"}},
}

// Classify returns the category of query. Unmatched and blank input yields GENERAL.
func Classify(query string) model.Category {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return model.CategoryGeneral
	}
	for _, r := range Rules {
		for _, kw := range r.Keywords {
			if strings.Contains(q, kw) {
				return r.Category
			}
		}
	}
	return model.CategoryGeneral
}

package nodes

import (
	"errors"

	"github.com/hrcopilot/server/internal/agent/model"
)

var (
	ErrEmptyQuery    = errors.New("query is required")
	ErrEmptyResponse = errors.New("chat model returned an empty response")
)

func copyTurns(turns []model.Turn) []model.Turn {
	if len(turns) == 0 {
		return []model.Turn{}
	}
	return append([]model.Turn(nil), turns...)
}

func copyEmployeeContext(ec *model.EmployeeContext) *model.EmployeeContext {
	if ec == nil {
		return nil
	}
	c := *ec
	return &c
}

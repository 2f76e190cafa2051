package maker

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/raphaelvigee/gmk/lexer"
)

var (
	ErrNoTargets  = errors.New("no targets")
	ErrNoExecutor = errors.New("no executor configured")
)

type NoRuleError struct {
	Target   string
	NeededBy string
	// Suggestions are known targets that fuzzily match Target.
	Suggestions []string
}

func (e *NoRuleError) Error() string {
	if e.NeededBy != "" {
		return fmt.Sprintf("no rule to make target '%v', needed by '%v'", e.Target, e.NeededBy)
	}
	return fmt.Sprintf("no rule to make target '%v'", e.Target)
}

type RecipeError struct {
	Target   string
	Command  string
	ExitCode int
	Location lexer.Location
}

func (e *RecipeError) Error() string {
	return fmt.Sprintf("%v: [%v] error %v", e.Location, e.Target, e.ExitCode)
}

// Package event carries the structured, non-fatal notifications emitted by
// the expander and the maker. Nothing in the core logs directly.
package event

import (
	"github.com/raphaelvigee/gmk/lexer"
)

type Event interface {
	event()
}

// OverrideWarning is emitted when a later explicit rule replaces the recipes
// of an earlier one.
type OverrideWarning struct {
	Target   string
	Prev     lexer.Location
	Location lexer.Location
}

type DepsComputed struct {
	Target string
	Deps   []string
}

// TargetStatus reports that Target is about to be rebuilt. Forced is set when
// the target is missing or one of its prerequisites was rebuilt in this run.
type TargetStatus struct {
	Target string
	Forced bool
}

type UpToDate struct {
	Target string
}

type NothingToDo struct {
	Target string
}

type RulesGenerated struct {
	Count int
}

type GlobNoMatch struct {
	Pattern  string
	Location lexer.Location
}

// CircularDependency is emitted when Target is reached again while it is
// still being resolved; the edge From -> Target is dropped.
type CircularDependency struct {
	Target string
	From   string
}

type TooFewArguments struct {
	Function string
	Want     int
	Got      int
}

type UndefinedVariable struct {
	Name string
}

type RecipeErrorIgnored struct {
	Target   string
	Command  string
	ExitCode int
}

type PatternCancelled struct {
	Target   string
	Deps     string
	Location lexer.Location
}

func (OverrideWarning) event()    {}
func (DepsComputed) event()       {}
func (TargetStatus) event()       {}
func (UpToDate) event()           {}
func (NothingToDo) event()        {}
func (RulesGenerated) event()     {}
func (GlobNoMatch) event()        {}
func (CircularDependency) event() {}
func (TooFewArguments) event()    {}
func (UndefinedVariable) event()  {}
func (RecipeErrorIgnored) event() {}
func (PatternCancelled) event()   {}

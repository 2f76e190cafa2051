package event

import (
	"strings"

	log "github.com/sirupsen/logrus"
)

type Sink interface {
	Emit(e Event)
}

type SinkFunc func(e Event)

func (f SinkFunc) Emit(e Event) {
	f(e)
}

var Discard Sink = SinkFunc(func(Event) {})

// Recorder keeps every event it receives, in order.
type Recorder struct {
	Events []Event
}

func (r *Recorder) Emit(e Event) {
	r.Events = append(r.Events, e)
}

func (r *Recorder) Reset() {
	r.Events = nil
}

// Of returns the recorded events of type T.
func Of[T Event](r *Recorder) []T {
	out := make([]T, 0)
	for _, e := range r.Events {
		if te, ok := e.(T); ok {
			out = append(out, te)
		}
	}

	return out
}

type logrusSink struct {
	l *log.Entry
}

func NewLogrusSink(l *log.Entry) Sink {
	return &logrusSink{l: l}
}

func (s *logrusSink) Emit(e Event) {
	switch e := e.(type) {
	case OverrideWarning:
		s.l.WithFields(log.Fields{
			"target": e.Target,
			"prev":   e.Prev.String(),
		}).Warnf("%v: overriding recipe for target '%v', %v", e.Location, e.Target, e.Prev)
	case PatternCancelled:
		s.l.WithField("target", e.Target).Warnf("%v: cancelling pattern rule '%v: %v'", e.Location, e.Target, e.Deps)
	case TooFewArguments:
		s.l.WithField("function", e.Function).Warnf("too few arguments to '%v': want %v, got %v", e.Function, e.Want, e.Got)
	case CircularDependency:
		s.l.WithField("target", e.Target).Warnf("circular %v <- %v dependency dropped", e.From, e.Target)
	case RecipeErrorIgnored:
		s.l.WithFields(log.Fields{
			"target": e.Target,
			"code":   e.ExitCode,
		}).Warnf("[%v] error %v (ignored)", e.Target, e.ExitCode)
	case GlobNoMatch:
		s.l.WithField("pattern", e.Pattern).Infof("%v: glob '%v' matched nothing", e.Location, e.Pattern)
	case UpToDate:
		s.l.WithField("target", e.Target).Infof("target '%v' is up to date", e.Target)
	case NothingToDo:
		s.l.WithField("target", e.Target).Infof("nothing to be done for '%v'", e.Target)
	case TargetStatus:
		s.l.WithFields(log.Fields{
			"target": e.Target,
			"forced": e.Forced,
		}).Debugf("rebuilding '%v'", e.Target)
	case DepsComputed:
		s.l.WithField("target", e.Target).Debugf("'%v' deps: %v", e.Target, strings.Join(e.Deps, " "))
	case RulesGenerated:
		s.l.WithField("count", e.Count).Debugf("%v rules generated", e.Count)
	case UndefinedVariable:
		s.l.WithField("name", e.Name).Tracef("undefined variable '%v'", e.Name)
	default:
		s.l.Debugf("%#v", e)
	}
}

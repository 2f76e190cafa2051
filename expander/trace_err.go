package expander

import (
	"strings"

	"github.com/pkg/errors"
)

var ErrUnterminated = errors.New("unterminated reference")

type traceErr struct {
	trace []string
	err   error
}

func (e *traceErr) Error() string {
	prefix := strings.Join(e.trace, " > ")

	return "[" + prefix + "]: " + e.err.Error()
}

func (e *traceErr) Unwrap() error {
	return e.err
}

// wrap records that err happened while parsing name, outermost first.
func wrap(name string, err error) error {
	var te *traceErr
	if errors.As(err, &te) {
		te.trace = append([]string{name}, te.trace...)
		return te
	}

	return &traceErr{
		trace: []string{name},
		err:   err,
	}
}

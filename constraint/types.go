package constraint

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/samber/mo"
)

// Reason classifies why a field failed validation. Callers switch on (field, reason) to
// pick a user-facing message.
type Reason string

const (
	ReasonRequired Reason = "required"
	ReasonFormat   Reason = "format"
	ReasonRange    Reason = "range"
	ReasonUnique   Reason = "unique"
	ReasonLength   Reason = "length"
)

type Validator[T any] func(v T) error
type ValidateFunc[T any] func() (Reason, Validator[T])

// Violation is a single failed field.
type Violation struct {
	Field  string
	Reason Reason
	Err    error
}

func (v Violation) Error() string {
	return fmt.Sprintf("%s: %v", v.Field, v.Err)
}

func (v Violation) Unwrap() error { return v.Err }

// Violations is the ordered list of failed fields; at most one entry per field.
type Violations []Violation

func (vs Violations) Error() string {
	return strings.Join(lo.Map(vs, func(v Violation, _ int) string { return v.Error() }), "; ")
}

// Has reports whether field failed with the given reason.
func (vs Violations) Has(field string, reason Reason) bool {
	return lo.ContainsBy(vs, func(v Violation) bool { return v.Field == field && v.Reason == reason })
}

// Err returns vs as an error, or nil when there is nothing to report.
func (vs Violations) Err() error {
	if len(vs) == 0 {
		return nil
	}
	return vs
}

// Check runs the validators in order and stops at the first failure.
func Check[T any](field string, value T, vfs ...ValidateFunc[T]) mo.Option[Violation] {
	for _, vf := range vfs {
		reason, v := vf()
		if err := v(value); err != nil {
			return mo.Some(Violation{Field: field, Reason: reason, Err: err})
		}
	}
	return mo.None[Violation]()
}

// Collect gathers the present results of Check into Violations.
func Collect(checks ...mo.Option[Violation]) Violations {
	return lo.FilterMap(checks, func(c mo.Option[Violation], _ int) (Violation, bool) {
		return c.Get()
	})
}

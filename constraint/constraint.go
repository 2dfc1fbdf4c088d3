package constraint

import (
	"cmp"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/shopspring/decimal"
	"github.com/tidwall/match"
)

var (
	ErrRequired = errors.New("is required")

	ErrLengthMin     = errors.New("length must be at least")
	ErrLengthMax     = errors.New("length must be at most")
	ErrLengthBetween = errors.New("length must be between")

	ErrNotMatch      = errors.New("not match pattern")
	ErrNotValidEmail = errors.New("not valid email address")
	ErrNotValidPhone = errors.New("not valid phone number")
	ErrNotOneOf      = errors.New("value must be one of")
	ErrMustGt        = errors.New("must be greater than")
	ErrMustGte       = errors.New("must be greater than or equal to")
	ErrMustLt        = errors.New("must be less than")
	ErrMustLte       = errors.New("must be less than or equal to")
	ErrMustBetween   = errors.New("must be between")
	ErrTooManyDigits = errors.New("too many digits")
)

// --- String Validators ---

// Required validates that a string is not blank.
func Required() ValidateFunc[string] {
	return func() (Reason, Validator[string]) {
		return ReasonRequired, func(str string) error {
			return lo.Ternary(strings.TrimSpace(str) == "", ErrRequired, nil)
		}
	}
}

// MinLength validates that a string has at least min characters.
func MinLength(min int) ValidateFunc[string] {
	return func() (Reason, Validator[string]) {
		return ReasonLength, func(str string) error {
			return lo.Ternary(utf8.RuneCountInString(str) < min, fmt.Errorf("%w %d", ErrLengthMin, min), nil)
		}
	}
}

// MaxLength validates that a string has at most max characters.
func MaxLength(max int) ValidateFunc[string] {
	return func() (Reason, Validator[string]) {
		return ReasonLength, func(str string) error {
			return lo.Ternary(utf8.RuneCountInString(str) > max, fmt.Errorf("%w %d", ErrLengthMax, max), nil)
		}
	}
}

// LengthBetween validates that a string's length is within a given range (inclusive).
func LengthBetween(min, max int) ValidateFunc[string] {
	return func() (Reason, Validator[string]) {
		return ReasonLength, func(str string) error {
			length := utf8.RuneCountInString(str)
			return lo.Ternary(length < min || length > max, fmt.Errorf("%w %d and %d characters", ErrLengthBetween, min, max), nil)
		}
	}
}

// Match validates that a string matches a given pattern.
// The pattern can include wildcards:
//   - `*`: matches any sequence of characters.
//   - `?`: matches any single character.
//
// Example: Match("foo*") will match "foobar", "foo", etc.
func Match(pattern string) ValidateFunc[string] {
	lo.Assertf(match.IsPattern(pattern), "invalid pattern `%s`: `?` stands for one character, `*` stands for any number of characters", pattern)
	return func() (Reason, Validator[string]) {
		return ReasonFormat, func(str string) error {
			return lo.Ternary(!match.Match(str, pattern), fmt.Errorf("%w %s", ErrNotMatch, pattern), nil)
		}
	}
}

// Email validates that a string is a bare email address such as "alice@example.com".
// Display-name forms like "Alice <alice@example.com>" are rejected.
func Email() ValidateFunc[string] {
	return func() (Reason, Validator[string]) {
		return ReasonFormat, func(str string) error {
			addr := mo.TupleToResult[*mail.Address](mail.ParseAddress(str))
			valid := addr.IsOk() && addr.MustGet().Address == str && strings.Contains(str[strings.LastIndex(str, "@")+1:], ".")
			return lo.Ternary(!valid, fmt.Errorf("%w: %s", ErrNotValidEmail, str), nil)
		}
	}
}

const phoneShape = "???-???-????"

// Phone validates the two accepted phone shapes:
//   - international: '+' followed by 7 to 15 digits, e.g. +1234567890
//   - dashed: three groups of digits, e.g. 123-456-7890
func Phone() ValidateFunc[string] {
	return func() (Reason, Validator[string]) {
		return ReasonFormat, func(str string) error {
			return lo.Ternary(!isInternational(str) && !isDashed(str), fmt.Errorf("%w: %s", ErrNotValidPhone, str), nil)
		}
	}
}

func isInternational(str string) bool {
	digits, ok := strings.CutPrefix(str, "+")
	return ok && len(digits) >= 7 && len(digits) <= 15 && allDigits(digits)
}

func isDashed(str string) bool {
	return match.Match(str, phoneShape) && allDigits(strings.ReplaceAll(str, "-", "")) && strings.Count(str, "-") == 2
}

func allDigits(str string) bool {
	return str != "" && strings.Trim(str, string(lo.NumbersCharset)) == ""
}

// --- Generic and Comparison Validators ---

// OneOf validates that a value is one of the allowed values.
func OneOf[T comparable](allowed ...T) ValidateFunc[T] {
	return func() (Reason, Validator[T]) {
		return ReasonFormat, func(val T) error {
			return lo.Ternary(!lo.Contains(allowed, val), fmt.Errorf("%w: %v", ErrNotOneOf, allowed), nil)
		}
	}
}

// Gt validates that a value is greater than the specified minimum.
func Gt[T cmp.Ordered](min T) ValidateFunc[T] {
	return func() (Reason, Validator[T]) {
		return ReasonRange, func(val T) error {
			return lo.Ternary(val <= min, fmt.Errorf("%w %v", ErrMustGt, min), nil)
		}
	}
}

// Gte validates that a value is greater than or equal to the specified minimum.
func Gte[T cmp.Ordered](min T) ValidateFunc[T] {
	return func() (Reason, Validator[T]) {
		return ReasonRange, func(val T) error {
			return lo.Ternary(val < min, fmt.Errorf("%w %v", ErrMustGte, min), nil)
		}
	}
}

// Lt validates that a value is less than the specified maximum.
func Lt[T cmp.Ordered](max T) ValidateFunc[T] {
	return func() (Reason, Validator[T]) {
		return ReasonRange, func(val T) error {
			return lo.Ternary(val >= max, fmt.Errorf("%w %v", ErrMustLt, max), nil)
		}
	}
}

// Lte validates that a value is less than or equal to the specified maximum.
func Lte[T cmp.Ordered](max T) ValidateFunc[T] {
	return func() (Reason, Validator[T]) {
		return ReasonRange, func(val T) error {
			return lo.Ternary(val > max, fmt.Errorf("%w %v", ErrMustLte, max), nil)
		}
	}
}

// Between validates that a value is within a given range (inclusive of min and max).
func Between[T cmp.Ordered](min, max T) ValidateFunc[T] {
	return func() (Reason, Validator[T]) {
		return ReasonRange, func(val T) error {
			return lo.Ternary(val < min || val > max, fmt.Errorf("%w %v and %v", ErrMustBetween, min, max), nil)
		}
	}
}

// --- Decimal Validators ---

// Positive validates that a decimal is strictly greater than zero.
func Positive() ValidateFunc[decimal.Decimal] {
	return func() (Reason, Validator[decimal.Decimal]) {
		return ReasonRange, func(d decimal.Decimal) error {
			return lo.Ternary(!d.IsPositive(), fmt.Errorf("%w 0", ErrMustGt), nil)
		}
	}
}

// Digits validates a decimal against a column of `precision` total digits with `scale`
// digits after the point, like SQL DECIMAL(precision, scale).
func Digits(precision, scale int32) ValidateFunc[decimal.Decimal] {
	return func() (Reason, Validator[decimal.Decimal]) {
		return ReasonFormat, func(d decimal.Decimal) error {
			if !d.Equal(d.Truncate(scale)) {
				return fmt.Errorf("%w: at most %d decimal places", ErrTooManyDigits, scale)
			}
			whole := d.Abs().Truncate(0).String()
			if len(strings.TrimLeft(whole, "0")) > int(precision-scale) {
				return fmt.Errorf("%w: at most %d digits in total", ErrTooManyDigits, precision)
			}
			return nil
		}
	}
}

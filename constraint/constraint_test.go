package constraint

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequired(t *testing.T) {
	tests := []struct {
		name    string
		str     string
		wantErr bool
	}{
		{"empty", "", true},
		{"blank", "   ", true},
		{"value", "Alice", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason, v := Required()()
			assert.Equal(t, ReasonRequired, reason)
			if err := v(tt.str); (err != nil) != tt.wantErr {
				t.Errorf("Required() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMinLength(t *testing.T) {
	tests := []struct {
		name    string
		min     int
		str     string
		wantErr bool
	}{
		{"too short", 5, "abc", true},
		{"exact length", 5, "abcde", false},
		{"longer", 5, "abcdef", false},
		{"empty string below min", 5, "", true},
		{"empty string at min 0", 0, "", false},
		{"negative min", -1, "abc", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, v := MinLength(tt.min)()
			if err := v(tt.str); (err != nil) != tt.wantErr {
				t.Errorf("MinLength() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMaxLength(t *testing.T) {
	tests := []struct {
		name    string
		max     int
		str     string
		wantErr bool
	}{
		{"too long", 5, "abcdef", true},
		{"exact length", 5, "abcde", false},
		{"shorter", 5, "abc", false},
		{"empty string", 5, "", false},
		{"max is 0", 0, "a", true},
		{"multibyte counts characters", 3, "äöü", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason, v := MaxLength(tt.max)()
			assert.Equal(t, ReasonLength, reason)
			err := v(tt.str)
			if (err != nil) != tt.wantErr {
				t.Errorf("MaxLength() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				assert.ErrorIs(t, err, ErrLengthMax)
			}
		})
	}
}

func TestLengthBetween(t *testing.T) {
	tests := []struct {
		name    string
		min     int
		max     int
		str     string
		wantErr bool
	}{
		{"too short", 3, 5, "ab", true},
		{"too long", 3, 5, "abcdef", true},
		{"min length", 3, 5, "abc", false},
		{"max length", 3, 5, "abcde", false},
		{"in between", 3, 5, "abcd", false},
		{"min > max", 5, 3, "abcd", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, v := LengthBetween(tt.min, tt.max)()
			if err := v(tt.str); (err != nil) != tt.wantErr {
				t.Errorf("LengthBetween() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		str     string
		wantErr bool
	}{
		{"prefix", "foo*", "foobar", false},
		{"prefix only", "foo*", "foo", false},
		{"single char", "a?c", "abc", false},
		{"mismatch", "foo*", "barfoo", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, v := Match(tt.pattern)()
			if err := v(tt.str); (err != nil) != tt.wantErr {
				t.Errorf("Match() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMatch_InvalidPatternPanics(t *testing.T) {
	assert.Panics(t, func() { Match("plain") })
}

func TestEmail(t *testing.T) {
	tests := []struct {
		name    string
		str     string
		wantErr bool
	}{
		{"valid", "alice@example.com", false},
		{"sub domain", "bob@mail.example.org", false},
		{"plus tag", "carol+crm@example.com", false},
		{"missing at", "alice.example.com", true},
		{"missing domain dot", "alice@example", true},
		{"display name", "Alice <alice@example.com>", true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason, v := Email()()
			assert.Equal(t, ReasonFormat, reason)
			if err := v(tt.str); (err != nil) != tt.wantErr {
				t.Errorf("Email() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPhone(t *testing.T) {
	tests := []struct {
		name    string
		str     string
		wantErr bool
	}{
		{"international", "+1234567890", false},
		{"international min digits", "+1234567", false},
		{"international max digits", "+123456789012345", false},
		{"international too short", "+123456", true},
		{"international too long", "+1234567890123456", true},
		{"international with letters", "+12345abc90", true},
		{"dashed", "123-456-7890", false},
		{"dashed with letters", "12a-456-7890", true},
		{"dashed wrong groups", "1234-56-7890", true},
		{"dashes everywhere", "---------- -", true},
		{"digits only", "1234567890", true},
		{"plus only", "+", true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, v := Phone()()
			err := v(tt.str)
			if (err != nil) != tt.wantErr {
				t.Errorf("Phone() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				assert.ErrorIs(t, err, ErrNotValidPhone)
			}
		})
	}
}

func TestOneOf(t *testing.T) {
	_, v := OneOf("id", "name")()
	require.NoError(t, v("id"))
	require.ErrorIs(t, v("email"), ErrNotOneOf)
}

func TestComparison(t *testing.T) {
	tests := []struct {
		name    string
		vf      ValidateFunc[int]
		val     int
		wantErr error
	}{
		{"gt ok", Gt(0), 1, nil},
		{"gt equal", Gt(0), 0, ErrMustGt},
		{"gte equal", Gte(0), 0, nil},
		{"gte below", Gte(0), -1, ErrMustGte},
		{"lt ok", Lt(10), 9, nil},
		{"lt equal", Lt(10), 10, ErrMustLt},
		{"lte equal", Lte(10), 10, nil},
		{"lte above", Lte(10), 11, ErrMustLte},
		{"between low", Between(1, 3), 1, nil},
		{"between high", Between(1, 3), 3, nil},
		{"between outside", Between(1, 3), 4, ErrMustBetween},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason, v := tt.vf()
			assert.Equal(t, ReasonRange, reason)
			err := v(tt.val)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPositive(t *testing.T) {
	_, v := Positive()()
	require.NoError(t, v(decimal.RequireFromString("0.01")))
	require.ErrorIs(t, v(decimal.Zero), ErrMustGt)
	require.ErrorIs(t, v(decimal.RequireFromString("-5")), ErrMustGt)
}

func TestDigits(t *testing.T) {
	tests := []struct {
		name    string
		val     string
		wantErr bool
	}{
		{"two places", "999.99", false},
		{"integer", "10", false},
		{"trailing zeros", "1.500", false},
		{"three places", "1.999", true},
		{"max whole digits", "99999999.99", false},
		{"too many whole digits", "123456789", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, v := Digits(10, 2)()
			err := v(decimal.RequireFromString(tt.val))
			if (err != nil) != tt.wantErr {
				t.Errorf("Digits() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCheck_StopsAtFirstFailure(t *testing.T) {
	res := Check("name", "", Required(), MaxLength(3))
	require.True(t, res.IsPresent())
	v := res.MustGet()
	assert.Equal(t, "name", v.Field)
	assert.Equal(t, ReasonRequired, v.Reason)
	assert.Equal(t, "name: is required", v.Error())
	assert.True(t, errors.Is(v, ErrRequired))

	assert.True(t, Check("name", "Bob", Required(), MaxLength(3)).IsAbsent())
}

func TestCollect(t *testing.T) {
	vs := Collect(
		Check("name", "", Required()),
		Check("email", "alice@example.com", Required(), Email()),
		Check("phone", "abc", Phone()),
	)
	require.Len(t, vs, 2)
	assert.True(t, vs.Has("name", ReasonRequired))
	assert.True(t, vs.Has("phone", ReasonFormat))
	assert.False(t, vs.Has("email", ReasonFormat))
	assert.Equal(t, "name: is required; phone: not valid phone number: abc", vs.Error())
	require.Error(t, vs.Err())

	var empty Violations
	assert.NoError(t, empty.Err())
	assert.NoError(t, Collect().Err())
}

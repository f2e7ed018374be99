package validate_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/jrsteele09/go-session-guard/internal/errors"
	"github.com/jrsteele09/go-session-guard/internal/validate"
)

func TestIsEmail(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"ion@firma.ro", true},
		{"  ion.popescu@sub.firma.ro ", true},
		{"bad-email", false},
		{"ion@firma", false},
		{"Ion <ion@firma.ro>", false},
		{"ion@.ro", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			require.Equal(t, tt.want, validate.IsEmail(tt.value))
		})
	}
}

func TestValidator(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		v := validate.New().
			Required("email", "ion@firma.ro").
			Email("email", "ion@firma.ro").
			MinLen("password", "parola123", 8)
		_, invalid := v.First()
		require.False(t, invalid)
		require.NoError(t, v.Err())
	})

	t.Run("collects in order", func(t *testing.T) {
		v := validate.New().
			Required("email", "").
			Email("email", "").
			MinLen("password", "scurt", 8)
		first, ok := v.First()
		require.True(t, ok)
		require.Equal(t, validate.CodeRequired, first.Code)

		err := v.Err()
		require.ErrorIs(t, err, apperrors.ErrInvalidInput)
		require.Len(t, err.(validate.Errors), 2)
	})

	t.Run("min length counts runes", func(t *testing.T) {
		require.NoError(t, validate.New().MinLen("password", "ăâîșțăâî", 8).Err())
	})
}

func TestNormalizeEmail(t *testing.T) {
	require.Equal(t, "ion@firma.ro", validate.NormalizeEmail("  Ion@Firma.RO "))
}

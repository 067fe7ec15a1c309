package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsUniqueViolation(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"sentinel", ErrDuplicateKey, true},
		{"wrapped sentinel", fmt.Errorf("insert: %w", ErrDuplicateKey), true},
		{"gorm translated", gorm.ErrDuplicatedKey, true},
		{"pg 23505", &pgconn.PgError{Code: "23505"}, true},
		{"wrapped pg 23505", fmt.Errorf("exec: %w", &pgconn.PgError{Code: "23505"}), true},
		{"pg other code", &pgconn.PgError{Code: "23514"}, false},
		{"plain", errors.New("connection refused"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsUniqueViolation(tc.err))
		})
	}
}

func TestIsCheckViolation(t *testing.T) {
	assert.True(t, IsCheckViolation(&pgconn.PgError{Code: "23514"}))
	assert.False(t, IsCheckViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsCheckViolation(errors.New("x")))
}

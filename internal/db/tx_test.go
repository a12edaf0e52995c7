package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"serialization failure", &pgconn.PgError{Code: pgerrcode.SerializationFailure}, true},
		{"deadlock", &pgconn.PgError{Code: pgerrcode.DeadlockDetected}, true},
		{"wrapped serialization failure", fmt.Errorf("insert booking failed: %w", &pgconn.PgError{Code: pgerrcode.SerializationFailure}), true},
		{"unique violation", &pgconn.PgError{Code: pgerrcode.UniqueViolation}, false},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestConstraintClassification(t *testing.T) {
	unique := fmt.Errorf("wrapped: %w", &pgconn.PgError{
		Code:           pgerrcode.UniqueViolation,
		ConstraintName: "bookings_booking_code_key",
	})
	assert.True(t, IsUniqueViolation(unique, "bookings_booking_code_key"))
	assert.True(t, IsUniqueViolation(unique, ""))
	assert.False(t, IsUniqueViolation(unique, "rooms_room_number_key"))
	assert.False(t, IsExclusionViolation(unique, ""))

	exclusion := &pgconn.PgError{Code: pgerrcode.ExclusionViolation, ConstraintName: "bookings_no_overlap"}
	assert.True(t, IsExclusionViolation(exclusion, "bookings_no_overlap"))

	fk := &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}
	assert.True(t, IsForeignKeyViolation(fk))
	assert.False(t, IsForeignKeyViolation(exclusion))
}

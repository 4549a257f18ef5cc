package booking

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestMapConstraintError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "slot uniqueness",
			err:  &pq.Error{Code: uniqueViolation, Constraint: constraintProfessionalSlot},
			want: ErrSlotNotAvailable,
		},
		{
			name: "single in progress",
			err:  fmt.Errorf("exec: %w", &pq.Error{Code: uniqueViolation, Constraint: constraintOneInProgress}),
			want: ErrAlreadyInProgress,
		},
		{
			name: "other unique index",
			err:  &pq.Error{Code: uniqueViolation, Constraint: "bookings_payment_token_uniq"},
		},
		{
			name: "not a constraint error",
			err:  errors.New("connection reset"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mapConstraintError(tt.err))
		})
	}
}

func TestLockProfessional_RequiresTransaction(t *testing.T) {
	r := NewRepository(nil)

	err := r.LockProfessional(context.Background(), 7)

	assert.ErrorIs(t, err, ErrNotInTransaction)
}

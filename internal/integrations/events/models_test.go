package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

func TestBookingEvent(t *testing.T) {
	at := time.Date(2025, 6, 1, 9, 5, 0, 0, time.UTC)
	b := &domain.Booking{
		ID:             12,
		SubjectID:      3,
		ProfessionalID: 7,
		Status:         domain.StatusInProgress,
		ExpectedStart:  time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
	}

	e := NewBookingEvent(TypeStarted, b, at)
	assert.Equal(t, "booking.started", e.RoutingKey())

	raw, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "started",
		"bookingId": 12,
		"subjectId": 3,
		"professionalId": 7,
		"status": "in_progress",
		"expectedStart": "2025-06-01T09:00:00Z",
		"occurredAt": "2025-06-01T09:05:00Z"
	}`, string(raw))
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, NopPublisher{}.Publish(context.Background(), BookingEvent{}))
}

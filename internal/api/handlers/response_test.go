package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

func TestRespondDomainError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{name: "validation", err: domain.NewValidationError("Reserve", domain.ErrInvalidSlot, "10:30"), status: http.StatusBadRequest, kind: "validation"},
		{name: "not found", err: domain.NewNotFoundError("GetByID", domain.ErrBookingNotFound, ""), status: http.StatusNotFound, kind: "not_found"},
		{name: "conflict", err: domain.NewConflictError("Reserve", domain.ErrSlotTaken, 42, domain.StatusConfirmed), status: http.StatusConflict, kind: "conflict"},
		{name: "reconciliation", err: domain.NewReconciliationError("Consume", domain.ErrUnknownToken, ""), status: http.StatusUnprocessableEntity, kind: "reconciliation"},
		{name: "transient", err: domain.NewTransientError("Initiate", domain.ErrGatewayUnavailable, errors.New("timeout")), status: http.StatusServiceUnavailable, kind: "transient"},
		{name: "forbidden", err: domain.NewForbiddenError("Cancel", domain.ErrAccessDenied, 42, 5), status: http.StatusForbidden, kind: "forbidden"},
		{name: "untyped", err: errors.New("boom"), status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RespondDomainError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.kind, body.Kind)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestRespondDomainError_ConflictBody(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondDomainError(rec, domain.NewConflictError("Reserve", domain.ErrSlotTaken, 42, domain.StatusConfirmed))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(42), body["bookingId"])
	assert.Equal(t, "CONFIRMED", body["currentStatus"])
	assert.Equal(t, domain.ErrSlotTaken.Error(), body["reason"])
}

func TestDecodeOptionalJSON(t *testing.T) {
	var dst struct {
		Reason *string `json:"reason"`
	}

	req := httptest.NewRequest(http.MethodPatch, "/", nil)
	assert.NoError(t, DecodeOptionalJSON(req, &dst))

	req = httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"unknown":1}`))
	assert.Error(t, DecodeOptionalJSON(req, &dst))
}

func TestPathID(t *testing.T) {
	var got int64
	var gotErr error
	r := mux.NewRouter()
	r.HandleFunc("/bookings/{bookingId}", func(w http.ResponseWriter, r *http.Request) {
		got, gotErr = PathID(r, "bookingId")
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/bookings/17", nil))
	require.NoError(t, gotErr)
	assert.Equal(t, int64(17), got)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/bookings/0", nil))
	assert.Error(t, gotErr)
}

func TestParseIDList(t *testing.T) {
	ids, err := ParseIDList("3, 1,2")
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1, 2}, ids)

	ids, err = ParseIDList("")
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = ParseIDList("1,x")
	assert.Error(t, err)
}

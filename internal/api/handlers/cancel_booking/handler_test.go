package cancel_booking

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/bookings/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

const userID int64 = 11

type stubService struct {
	gotID     int64
	gotUserID int64
	gotReq    *models.CancelRequest
	err       error
}

func (s *stubService) Cancel(_ context.Context, id, userID int64, req *models.CancelRequest) (*models.BookingResponse, error) {
	s.gotID, s.gotUserID, s.gotReq = id, userID, req
	if s.err != nil {
		return nil, s.err
	}
	return &models.BookingResponse{ID: id, Status: string(domain.StatusCancelled)}, nil
}

func serve(svc BookingService, path, body string) *httptest.ResponseRecorder {
	return serveAs(svc, path, body, userID)
}

// serveAs выполняет запрос от имени пользователя; 0 означает запрос без пользователя
func serveAs(svc BookingService, path, body string, user int64) *httptest.ResponseRecorder {
	r := mux.NewRouter()
	r.HandleFunc("/bookings/{bookingId}/cancel", NewHandler(svc, logger.NewNop()).Handle).Methods(http.MethodPatch)

	req := httptest.NewRequest(http.MethodPatch, path, strings.NewReader(body))
	if user != 0 {
		req = req.WithContext(middleware.WithUserID(req.Context(), user))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandler_Cancel(t *testing.T) {
	svc := &stubService{}
	rec := serve(svc, "/bookings/5/cancel", `{"cancellationReason":"client is ill"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(5), svc.gotID)
	assert.Equal(t, userID, svc.gotUserID)
	require.NotNil(t, svc.gotReq.Reason)
	assert.Equal(t, "client is ill", *svc.gotReq.Reason)

	var resp models.BookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "CANCELLED", resp.Status)
}

func TestHandler_Cancel_EmptyBody(t *testing.T) {
	svc := &stubService{}
	rec := serve(svc, "/bookings/5/cancel", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, svc.gotReq.Reason)
}

func TestHandler_Cancel_Errors(t *testing.T) {
	rec := serve(&stubService{}, "/bookings/abc/cancel", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	svc := &stubService{err: domain.NewConflictError("Cancel", domain.ErrInvalidTransition, 5, domain.StatusCompleted)}
	rec = serve(svc, "/bookings/5/cancel", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), `"currentStatus":"COMPLETED"`)
}

func TestHandler_Cancel_MissingUser(t *testing.T) {
	svc := &stubService{}
	rec := serveAs(svc, "/bookings/5/cancel", "", 0)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, svc.gotID)
}

func TestHandler_Cancel_Forbidden(t *testing.T) {
	svc := &stubService{err: domain.NewForbiddenError("Cancel", domain.ErrAccessDenied, 5, 99)}
	rec := serveAs(svc, "/bookings/5/cancel", "", 99)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, int64(99), svc.gotUserID)
}

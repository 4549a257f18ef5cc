package directory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/internal/professionals", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"id": 7, "full_name": "Dr. Linh", "service_types": ["consultation"], "active": true},
			{"id": 8, "full_name": "Dr. Minh", "service_types": ["therapy"], "active": true},
			{"id": 9, "full_name": "Dr. Anh", "active": true},
			{"id": 10, "full_name": "Dr. Retired", "active": false}
		]`))
	})
	mux.HandleFunc("/internal/professionals/7", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id": 7, "full_name": "Dr. Linh", "active": true}`))
	})
	mux.HandleFunc("/internal/professionals/500", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_ListProfessionals(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(srv.URL, time.Second, logger.NewNop())

	got, err := c.ListProfessionals(context.Background(), "consultation")
	require.NoError(t, err)

	ids := make([]int64, 0, len(got))
	for _, p := range got {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []int64{7, 9}, ids)
}

func TestClient_GetProfessional(t *testing.T) {
	srv := newTestServer(t)
	c := NewClient(srv.URL, time.Second, logger.NewNop())

	p, err := c.GetProfessional(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "Dr. Linh", p.FullName)

	_, err = c.GetProfessional(context.Background(), 404)
	assert.ErrorIs(t, err, ErrProfessionalNotFound)

	_, err = c.GetProfessional(context.Background(), 500)
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestClient_Unreachable(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", 200*time.Millisecond, logger.NewNop())

	_, err := c.ListProfessionals(context.Background(), "")
	assert.ErrorIs(t, err, ErrInternal)
}

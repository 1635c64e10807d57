package pricing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-RecurringService/pkg/logger"
)

func TestClient_Calculate(t *testing.T) {
	var received Request

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/internal/pricing/calculate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"subtotal":"480.00","serviceFee":"50.00","frequencyDiscount":"30.00","total":"500.00"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, logger.NewNop())

	breakdown, err := client.Calculate(context.Background(), Request{
		ServiceType: "standard",
		Bedrooms:    2,
		Bathrooms:   1,
		Extras:      []string{"fridge"},
		Frequency:   "weekly",
	})
	require.NoError(t, err)

	assert.Equal(t, "standard", received.ServiceType)
	assert.Equal(t, "weekly", received.Frequency)
	assert.True(t, decimal.RequireFromString("500").Equal(breakdown.Total))
	assert.True(t, decimal.RequireFromString("30").Equal(breakdown.FrequencyDiscount))
}

func TestClient_Calculate_ErrorBodyIsTruncated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(strings.Repeat("x", 1<<20)))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second, logger.NewNop())
	_, err := client.Calculate(context.Background(), Request{ServiceType: "x", Frequency: "weekly"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidResponse)
	assert.Less(t, len(err.Error()), maxErrorBodySize+200)
}

func TestClient_Calculate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "unknown service", status: http.StatusNotFound, body: `{}`, wantErr: ErrUnknownService},
		{name: "server error", status: http.StatusInternalServerError, body: `{"code":500,"message":"boom"}`, wantErr: ErrInvalidResponse},
		{name: "zero total", status: http.StatusOK, body: `{"subtotal":"0","serviceFee":"0","frequencyDiscount":"0","total":"0"}`, wantErr: ErrInvalidResponse},
		{name: "broken json", status: http.StatusOK, body: `{`, wantErr: ErrInvalidResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClient(srv.URL, time.Second, logger.NewNop())
			_, err := client.Calculate(context.Background(), Request{ServiceType: "x", Frequency: "weekly"})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

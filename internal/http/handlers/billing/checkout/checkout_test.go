package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tsmartminds/smartminds/internal/errs"
	"github.com/tsmartminds/smartminds/internal/http/middlewarectx"
	"github.com/tsmartminds/smartminds/internal/session"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) CreateCheckoutSession(ctx context.Context, userUID string, subjects []string, origin string) (string, error) {
	args := m.Called(ctx, userUID, subjects, origin)
	return args.String(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func doRequest(t *testing.T, handler *Handler, body []byte, sess *session.Data, origin string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/create-checkout-session", bytes.NewReader(body))
	if origin != "" {
		req.Header.Set("Origin", origin)
	}

	ctx := context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123")
	if sess != nil {
		ctx = context.WithValue(ctx, middlewarectx.SessionKey, sess)
	}
	req = req.WithContext(ctx)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestCheckoutHandler_Success(t *testing.T) {
	serviceMock := new(ServiceMock)
	handler := New(newNoopLogger(), serviceMock)

	serviceMock.On("CreateCheckoutSession", mock.Anything, "uid-7",
		[]string{"biology", "economics"}, "https://smartminds.example").
		Return("https://checkout.stripe.com/pay/cs_1", nil).Once()

	body, _ := json.Marshal(Request{UserID: "uid-7", Subjects: []string{"biology", "economics"}})
	rec := doRequest(t, handler, body, nil, "https://smartminds.example")

	assert.Equal(t, http.StatusOK, rec.Code)

	var got map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "OK", got["status"])

	data := got["data"].(map[string]any)
	assert.Equal(t, "https://checkout.stripe.com/pay/cs_1", data["url"])
	serviceMock.AssertExpectations(t)
}

// Вход неоплаченного пользователя сессию не создаёт, поэтому
// оформление подписки должно работать без куки.
func TestCheckoutHandler_WorksWithoutSession(t *testing.T) {
	serviceMock := new(ServiceMock)
	handler := New(newNoopLogger(), serviceMock)

	serviceMock.On("CreateCheckoutSession", mock.Anything, "user-123",
		[]string{"mathematics"}, "https://smartminds.example").
		Return("https://checkout.stripe.com/pay/cs_3", nil).Once()

	body := []byte(`{"userId":"user-123","subjects":["mathematics"]}`)
	rec := doRequest(t, handler, body, nil, "https://smartminds.example")

	assert.Equal(t, http.StatusOK, rec.Code)
	serviceMock.AssertExpectations(t)
}

// Активная сессия важнее идентификатора из тела запроса.
func TestCheckoutHandler_SessionOverridesBodyUserID(t *testing.T) {
	serviceMock := new(ServiceMock)
	handler := New(newNoopLogger(), serviceMock)

	serviceMock.On("CreateCheckoutSession", mock.Anything, "uid-7",
		[]string{"biology"}, "https://smartminds.example").
		Return("https://checkout.stripe.com/pay/cs_4", nil).Once()

	body := []byte(`{"userId":"somebody-else","subjects":["biology"]}`)
	rec := doRequest(t, handler, body, &session.Data{UserUID: "uid-7"}, "https://smartminds.example")

	assert.Equal(t, http.StatusOK, rec.Code)
	serviceMock.AssertExpectations(t)
}

func TestCheckoutHandler_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		body []byte
	}{
		{
			name: "missing user id",
			body: []byte(`{"subjects":["biology"]}`),
		},
		{
			name: "empty subjects",
			body: []byte(`{"userId":"uid-7","subjects":[]}`),
		},
		{
			name: "invalid json",
			body: []byte(`{"userId":`),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ServiceMock)
			handler := New(newNoopLogger(), serviceMock)

			rec := doRequest(t, handler, tt.body, nil, "https://smartminds.example")

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			serviceMock.AssertNotCalled(t, "CreateCheckoutSession", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestCheckoutHandler_ServiceErrors(t *testing.T) {
	tests := []struct {
		name           string
		mockErr        error
		wantStatusCode int
		wantError      string
	}{
		{
			name:           "billing not configured",
			mockErr:        errs.ErrBillingUnavailable,
			wantStatusCode: http.StatusServiceUnavailable,
			wantError:      "payment system is not configured",
		},
		{
			name:           "user not found",
			mockErr:        errs.ErrNotFound,
			wantStatusCode: http.StatusNotFound,
			wantError:      "user not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ServiceMock)
			handler := New(newNoopLogger(), serviceMock)

			serviceMock.On("CreateCheckoutSession", mock.Anything, "uid-7",
				[]string{"biology"}, "https://smartminds.example").
				Return("", tt.mockErr).Once()

			body, _ := json.Marshal(Request{UserID: "uid-7", Subjects: []string{"biology"}})
			rec := doRequest(t, handler, body, nil, "https://smartminds.example")

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, tt.wantError, got["error"])
		})
	}
}

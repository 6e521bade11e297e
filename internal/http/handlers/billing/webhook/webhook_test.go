package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v78"
)

type VerifierMock struct {
	mock.Mock
}

func (m *VerifierMock) ConstructEvent(payload []byte, signature string) (stripe.Event, error) {
	args := m.Called(payload, signature)
	return args.Get(0).(stripe.Event), args.Error(1)
}

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) ProcessEvent(ctx context.Context, event stripe.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func doRequest(t *testing.T, handler *Handler, body []byte, signature string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", bytes.NewReader(body))
	req.Header.Set("Stripe-Signature", signature)
	req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestWebhookHandler_Success(t *testing.T) {
	verifierMock := new(VerifierMock)
	serviceMock := new(ServiceMock)
	handler := New(newNoopLogger(), verifierMock, serviceMock)

	payload := []byte(`{"type":"checkout.session.completed"}`)
	event := stripe.Event{Type: "checkout.session.completed"}

	verifierMock.On("ConstructEvent", payload, "sig-valid").
		Return(event, nil).Once()
	serviceMock.On("ProcessEvent", mock.Anything, event).
		Return(nil).Once()

	rec := doRequest(t, handler, payload, "sig-valid")

	assert.Equal(t, http.StatusOK, rec.Code)

	var got map[string]bool
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.True(t, got["received"])
	verifierMock.AssertExpectations(t)
	serviceMock.AssertExpectations(t)
}

func TestWebhookHandler_InvalidSignature(t *testing.T) {
	verifierMock := new(VerifierMock)
	serviceMock := new(ServiceMock)
	handler := New(newNoopLogger(), verifierMock, serviceMock)

	payload := []byte(`{"type":"checkout.session.completed"}`)
	verifierMock.On("ConstructEvent", payload, "sig-bad").
		Return(stripe.Event{}, errors.New("signature mismatch")).Once()

	rec := doRequest(t, handler, payload, "sig-bad")

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var got map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "invalid webhook signature", got["error"])
	serviceMock.AssertNotCalled(t, "ProcessEvent", mock.Anything, mock.Anything)
}

func TestWebhookHandler_ProcessingError(t *testing.T) {
	verifierMock := new(VerifierMock)
	serviceMock := new(ServiceMock)
	handler := New(newNoopLogger(), verifierMock, serviceMock)

	payload := []byte(`{"type":"checkout.session.completed"}`)
	event := stripe.Event{Type: "checkout.session.completed"}

	verifierMock.On("ConstructEvent", payload, "sig-valid").
		Return(event, nil).Once()
	serviceMock.On("ProcessEvent", mock.Anything, event).
		Return(errors.New("storage error")).Once()

	rec := doRequest(t, handler, payload, "sig-valid")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestWebhookHandler_BillingNotConfigured(t *testing.T) {
	serviceMock := new(ServiceMock)
	handler := New(newNoopLogger(), nil, serviceMock)

	rec := doRequest(t, handler, []byte(`{}`), "sig")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var got map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "payment system is not configured", got["error"])
}

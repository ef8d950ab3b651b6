package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "seatpao/internal/errors"
	"seatpao/internal/external"
	"seatpao/internal/models"
	"seatpao/internal/repository/memory"
	"seatpao/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) CreateSession(ctx context.Context, req external.SessionRequest) (*external.Session, error) {
	args := m.Called(ctx, req)
	if s, ok := args.Get(0).(*external.Session); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGateway) RetrieveSession(ctx context.Context, sessionID string) (*external.Session, error) {
	args := m.Called(ctx, sessionID)
	if s, ok := args.Get(0).(*external.Session); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

type testEnv struct {
	router  *gin.Engine
	store   *memory.Store
	gateway *mockGateway
	vendor  string
}

func setupRouter(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.New()
	gateway := &mockGateway{}
	services := service.NewServices(service.Repositories{
		Tickets:  store.Tickets,
		Bookings: store.Bookings,
		Payments: store.Payments,
		Users:    store.Users,
	}, gateway, nil, nil, service.Options{Currency: "bdt"})

	vendorID := uuid.New().String()
	require.NoError(t, store.Users.Create(context.Background(), &models.User{
		ID:    vendorID,
		Email: "vendor@seatpao.test",
		Role:  models.RoleVendor,
	}))

	r := gin.New()
	NewHandlers(services).Register(r.Group("/api"))

	return &testEnv{router: r, store: store, gateway: gateway, vendor: vendorID}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// approvedTicket creates and approves a ticket through the API
func (e *testEnv) approvedTicket(t *testing.T, seats int) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/tickets", models.CreateTicketRequest{
		VendorID: e.vendor,
		Title:    "Dhaka to Rajshahi",
		Price:    75000,
		Seats:    seats,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var ticket models.TicketResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ticket))

	w = e.do(t, http.MethodPatch, "/api/admin/tickets/"+ticket.ID+"/approve", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return ticket.ID
}

func (e *testEnv) book(t *testing.T, ticketID string, quantity int) models.CreateBookingResponse {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/bookings", models.CreateBookingRequest{
		TicketID: ticketID,
		UserID:   "user-1",
		Quantity: quantity,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp models.CreateBookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestCreateBooking(t *testing.T) {
	env := setupRouter(t)
	ticketID := env.approvedTicket(t, 10)

	resp := env.book(t, ticketID, 3)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, 7, resp.RemainingSeats)
	assert.Equal(t, "2250.00", resp.TotalPrice)
}

func TestCreateBookingValidation(t *testing.T) {
	env := setupRouter(t)
	ticketID := env.approvedTicket(t, 2)

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
	}{
		{"missing quantity", map[string]interface{}{"ticket_id": ticketID, "user_id": "u"}, http.StatusBadRequest},
		{"bad ticket id", map[string]interface{}{"ticket_id": "nope", "user_id": "u", "quantity": 1}, http.StatusBadRequest},
		{"unknown ticket", models.CreateBookingRequest{TicketID: uuid.New().String(), UserID: "u", Quantity: 1}, http.StatusNotFound},
		{"too many seats", models.CreateBookingRequest{TicketID: ticketID, UserID: "u", Quantity: 3}, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/bookings", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
		})
	}
}

func TestBookingTransitionsOverHTTP(t *testing.T) {
	env := setupRouter(t)
	ticketID := env.approvedTicket(t, 10)
	booking := env.book(t, ticketID, 2)

	w := env.do(t, http.MethodPatch, "/api/bookings/"+booking.ID+"/reject", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var rejected models.CancelBookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rejected))
	assert.Equal(t, models.BookingRejected, rejected.Status)
	assert.Empty(t, rejected.ReleaseError)

	w = env.do(t, http.MethodPatch, "/api/bookings/"+booking.ID+"/accept", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodDelete, "/api/bookings/"+booking.ID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodGet, "/api/tickets/"+ticketID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var ticket models.TicketResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ticket))
	assert.Equal(t, 10, ticket.Seats)
}

func TestCancelReportsReleaseFailure(t *testing.T) {
	env := setupRouter(t)
	ticketID := env.approvedTicket(t, 10)
	booking := env.book(t, ticketID, 2)

	env.store.Tickets.ReleaseErr = fmt.Errorf("connection reset")
	w := env.do(t, http.MethodDelete, "/api/bookings/"+booking.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.CancelBookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.BookingCancelled, resp.Status)
	assert.NotEmpty(t, resp.ReleaseError)
}

func TestPaymentFlowOverHTTP(t *testing.T) {
	env := setupRouter(t)
	ticketID := env.approvedTicket(t, 10)
	booking := env.book(t, ticketID, 2)

	w := env.do(t, http.MethodPatch, "/api/bookings/"+booking.ID+"/accept", nil)
	require.Equal(t, http.StatusOK, w.Code)

	sessionID := "cs_test_" + booking.ID
	env.gateway.On("CreateSession", mock.Anything, mock.MatchedBy(func(req external.SessionRequest) bool {
		return req.BookingID == booking.ID && req.Amount == 150000 && req.IdempotencyKey != ""
	})).Return(&external.Session{ID: sessionID, URL: "https://checkout.example/" + sessionID, BookingID: booking.ID, Amount: 150000}, nil).Once()

	w = env.do(t, http.MethodPost, "/api/payments/checkout-session", models.InitiatePaymentRequest{BookingID: booking.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var initiated models.InitiatePaymentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &initiated))
	assert.Equal(t, sessionID, initiated.SessionID)
	assert.Equal(t, "1500.00", initiated.Amount)

	env.gateway.On("RetrieveSession", mock.Anything, sessionID).
		Return(&external.Session{ID: sessionID, BookingID: booking.ID, Amount: 150000, Paid: false}, nil).Once()
	w = env.do(t, http.MethodPost, "/api/payments/confirm", models.ConfirmPaymentRequest{SessionID: sessionID})
	assert.Equal(t, http.StatusAccepted, w.Code)

	env.gateway.On("RetrieveSession", mock.Anything, sessionID).
		Return(&external.Session{ID: sessionID, BookingID: booking.ID, Amount: 150000, Paid: true, TransactionID: "pi_http"}, nil)

	for i, wantDuplicate := range []bool{false, true} {
		w = env.do(t, http.MethodPost, "/api/payments/confirm", models.ConfirmPaymentRequest{SessionID: sessionID})
		require.Equal(t, http.StatusOK, w.Code, "attempt %d: %s", i, w.Body.String())

		var confirmed models.ConfirmPaymentResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &confirmed))
		assert.True(t, confirmed.Success)
		assert.Equal(t, "pi_http", confirmed.TransactionID)
		assert.Equal(t, wantDuplicate, confirmed.Duplicate)
	}

	assert.Equal(t, 1, env.store.PaymentCount())
	env.gateway.AssertExpectations(t)
}

func TestInitiatePaymentGatewayUnavailable(t *testing.T) {
	env := setupRouter(t)
	ticketID := env.approvedTicket(t, 10)
	booking := env.book(t, ticketID, 1)
	w := env.do(t, http.MethodPatch, "/api/bookings/"+booking.ID+"/accept", nil)
	require.Equal(t, http.StatusOK, w.Code)

	env.gateway.On("CreateSession", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("create: %w", apperrors.ErrGatewayUnavailable))

	w = env.do(t, http.MethodPost, "/api/payments/checkout-session", models.InitiatePaymentRequest{BookingID: booking.ID})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"retryable":true`)
}

func TestFraudCascadeOverHTTP(t *testing.T) {
	env := setupRouter(t)
	ticketID := env.approvedTicket(t, 10)

	w := env.do(t, http.MethodPatch, "/api/admin/users/"+env.vendor+"/fraud", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var fraud models.FraudResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fraud))
	assert.True(t, fraud.Fraud)
	assert.Equal(t, int64(1), fraud.HiddenTickets)

	w = env.do(t, http.MethodPost, "/api/bookings", models.CreateBookingRequest{TicketID: ticketID, UserID: "u", Quantity: 1})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodPatch, "/api/admin/tickets/"+ticketID+"/unhide", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPatch, "/api/admin/users/"+env.vendor+"/make-vendor", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPatch, "/api/admin/tickets/"+ticketID+"/unhide", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTicketEndpoints(t *testing.T) {
	env := setupRouter(t)
	ticketID := env.approvedTicket(t, 10)

	w := env.do(t, http.MethodPatch, "/api/tickets/"+ticketID, map[string]interface{}{"title": "Dhaka to Bogura"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Dhaka to Bogura")

	w = env.do(t, http.MethodPatch, "/api/admin/tickets/"+ticketID+"/advertise", models.AdvertiseTicketRequest{Advertised: true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"advertised":true`)

	w = env.do(t, http.MethodPatch, "/api/admin/tickets/"+ticketID+"/reject", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodDelete, "/api/tickets/"+ticketID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodGet, "/api/tickets/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

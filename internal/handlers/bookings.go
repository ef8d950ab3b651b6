package handlers

import (
	"net/http"

	"seatpao/internal/models"
	"seatpao/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateBooking - POST /api/bookings
// Reserves the seats and records a pending booking
func (h *Handlers) CreateBooking(c *gin.Context) {
	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	booking, remaining, err := h.services.Bookings.CreateBooking(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.CreateBookingResponse{
		ID:             booking.ID,
		Status:         string(booking.Status),
		TotalPrice:     models.FormatAmount(booking.TotalPrice),
		RemainingSeats: remaining,
	})
}

// GetBooking - GET /api/bookings/:id
func (h *Handlers) GetBooking(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	booking, err := h.services.Bookings.GetBooking(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewBookingResponse(booking))
}

// AcceptBooking - PATCH /api/bookings/:id/accept
func (h *Handlers) AcceptBooking(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	booking, err := h.services.Bookings.AcceptBooking(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewBookingResponse(booking))
}

// RejectBooking - PATCH /api/bookings/:id/reject
func (h *Handlers) RejectBooking(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.services.Bookings.RejectBooking(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, transitionResponse(result))
}

// CancelBooking - DELETE /api/bookings/:id
func (h *Handlers) CancelBooking(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.services.Bookings.CancelBooking(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, transitionResponse(result))
}

// transitionResponse surfaces a failed seat release next to the new booking state
func transitionResponse(result *service.TransitionResult) models.CancelBookingResponse {
	resp := models.CancelBookingResponse{BookingResponse: models.NewBookingResponse(result.Booking)}
	if result.ReleaseErr != nil {
		resp.ReleaseError = result.ReleaseErr.Error()
	}
	return resp
}

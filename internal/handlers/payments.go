package handlers

import (
	"net/http"

	"seatpao/internal/models"

	"github.com/gin-gonic/gin"
)

// InitiatePayment - POST /api/payments/checkout-session
// Opens a checkout session for an accepted booking
func (h *Handlers) InitiatePayment(c *gin.Context) {
	var req models.InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.services.Payments.InitiatePayment(c.Request.Context(), req.BookingID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.InitiatePaymentResponse{
		SessionID: session.ID,
		URL:       session.URL,
		Amount:    models.FormatAmount(session.Amount),
	})
}

// ConfirmPayment - POST /api/payments/confirm
// Called by the client after redirect; safe to repeat
func (h *Handlers) ConfirmPayment(c *gin.Context) {
	var req models.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.services.Payments.ConfirmPayment(c.Request.Context(), req.SessionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ConfirmPaymentResponse{
		Success:       true,
		BookingID:     result.BookingID,
		TransactionID: result.TransactionID,
		Duplicate:     result.Duplicate,
	})
}

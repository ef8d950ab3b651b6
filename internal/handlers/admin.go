package handlers

import (
	"net/http"

	"seatpao/internal/models"

	"github.com/gin-gonic/gin"
)

// ApproveTicket - PATCH /api/admin/tickets/:id/approve
func (h *Handlers) ApproveTicket(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ticket, err := h.services.Tickets.ApproveTicket(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewTicketResponse(ticket))
}

// RejectTicket - PATCH /api/admin/tickets/:id/reject
func (h *Handlers) RejectTicket(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ticket, err := h.services.Tickets.RejectTicket(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewTicketResponse(ticket))
}

// AdvertiseTicket - PATCH /api/admin/tickets/:id/advertise
func (h *Handlers) AdvertiseTicket(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.AdvertiseTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ticket, err := h.services.Tickets.SetAdvertised(c.Request.Context(), id, req.Advertised)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewTicketResponse(ticket))
}

// UnhideTicket - PATCH /api/admin/tickets/:id/unhide
func (h *Handlers) UnhideTicket(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ticket, err := h.services.Tickets.UnhideTicket(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewTicketResponse(ticket))
}

// MarkFraud - PATCH /api/admin/users/:id/fraud
// A failed hide is reported but does not fail the verdict
func (h *Handlers) MarkFraud(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.services.Fraud.MarkFraud(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := models.FraudResponse{
		VendorID:      result.VendorID,
		Fraud:         true,
		HiddenTickets: result.HiddenTickets,
	}
	if result.HideErr != nil {
		resp.CascadeError = result.HideErr.Error()
	}

	c.JSON(http.StatusOK, resp)
}

// MakeVendor - PATCH /api/admin/users/:id/make-vendor
// Clears the fraud flag; hidden tickets stay hidden
func (h *Handlers) MakeVendor(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.services.Fraud.UnmarkFraud(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.FraudResponse{VendorID: id, Fraud: false})
}

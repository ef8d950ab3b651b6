package handlers

import (
	"net/http"

	"seatpao/internal/models"

	"github.com/gin-gonic/gin"
)

// CreateTicket - POST /api/tickets
func (h *Handlers) CreateTicket(c *gin.Context) {
	var req models.CreateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ticket, err := h.services.Tickets.CreateTicket(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.NewTicketResponse(ticket))
}

// GetTicket - GET /api/tickets/:id
func (h *Handlers) GetTicket(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ticket, err := h.services.Tickets.GetTicket(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewTicketResponse(ticket))
}

// UpdateTicket - PATCH /api/tickets/:id
func (h *Handlers) UpdateTicket(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ticket, err := h.services.Tickets.UpdateTicket(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewTicketResponse(ticket))
}

// DeleteTicket - DELETE /api/tickets/:id
func (h *Handlers) DeleteTicket(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.services.Tickets.DeleteTicket(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

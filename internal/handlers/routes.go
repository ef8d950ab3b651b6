package handlers

import "github.com/gin-gonic/gin"

// Register mounts the API routes on group
func (h *Handlers) Register(api *gin.RouterGroup) {
	users := api.Group("/users")
	{
		users.POST("", h.CreateUser)
		users.GET("/:id", h.GetUser)
	}

	tickets := api.Group("/tickets")
	{
		tickets.POST("", h.CreateTicket)
		tickets.GET("/:id", h.GetTicket)
		tickets.PATCH("/:id", h.UpdateTicket)
		tickets.DELETE("/:id", h.DeleteTicket)
	}

	bookings := api.Group("/bookings")
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("/:id", h.GetBooking)
		bookings.PATCH("/:id/accept", h.AcceptBooking)
		bookings.PATCH("/:id/reject", h.RejectBooking)
		bookings.DELETE("/:id", h.CancelBooking)
	}

	payments := api.Group("/payments")
	{
		payments.POST("/checkout-session", h.InitiatePayment)
		payments.POST("/confirm", h.ConfirmPayment)
	}

	admin := api.Group("/admin")
	{
		admin.PATCH("/tickets/:id/approve", h.ApproveTicket)
		admin.PATCH("/tickets/:id/reject", h.RejectTicket)
		admin.PATCH("/tickets/:id/advertise", h.AdvertiseTicket)
		admin.PATCH("/tickets/:id/unhide", h.UnhideTicket)
		admin.PATCH("/users/:id/fraud", h.MarkFraud)
		admin.PATCH("/users/:id/make-vendor", h.MakeVendor)
	}
}

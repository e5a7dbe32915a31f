package api

import (
	"net/http"

	"github.com/DevBolt07/smart-parking/internal/api/handler"
	"github.com/DevBolt07/smart-parking/internal/api/middleware"
	"github.com/DevBolt07/smart-parking/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRouter(
	authService *service.AuthService,
	slotService *service.SlotService,
	bookingService *service.BookingService,
	gateService *service.GateService,
	authMw *middleware.AuthMiddleware,
	wsManager *handler.WebSocketManager,
) *gin.Engine {
	r := gin.Default()

	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Smart Parking System API Running!")
	})

	// WebSocket endpoint (không cần auth cho real-time connection)
	wsHandler := handler.NewWebSocketHandler(wsManager)
	r.GET("/ws", wsHandler.HandleWebSocket)

	authHandler := handler.NewAuthHandler(authService)
	slotHandler := handler.NewSlotHandler(slotService)
	bookingHandler := handler.NewBookingHandler(bookingService, gateService)
	paymentHandler := handler.NewPaymentHandler()
	iotHandler := handler.NewIoTHandler(slotService, gateService)

	apiRoutes := r.Group("/api")
	{
		// Public
		apiRoutes.POST("/register", authHandler.Register)
		apiRoutes.POST("/login", authHandler.Login)
		apiRoutes.GET("/slots/status", slotHandler.GetAvailability)

		// Thiết bị gọi trực tiếp, xác thực ở tầng mạng
		iotRoutes := apiRoutes.Group("/iot")
		{
			iotRoutes.POST("/update-slot", iotHandler.UpdateSlot)
			iotRoutes.GET("/gate-status", iotHandler.GetGateStatus)
		}

		// Yêu cầu đăng nhập
		protected := apiRoutes.Group("")
		protected.Use(authMw.Authenticate())
		{
			protected.GET("/slots", slotHandler.GetAllSlots)
			protected.POST("/slots/add", authMw.AuthorizeRole("admin"), slotHandler.AddSlot)

			protected.POST("/book", bookingHandler.BookSlot)
			protected.POST("/entry-gate", bookingHandler.OpenEntryGate)
			protected.POST("/exit-gate", bookingHandler.OpenExitGate)
			protected.GET("/bookings/active", bookingHandler.GetActiveBooking)
			protected.GET("/bookings/history", bookingHandler.GetBookingHistory)

			paymentRoutes := protected.Group("/payment")
			{
				paymentRoutes.POST("/initiate", paymentHandler.InitiatePayment)
				paymentRoutes.POST("/verify", paymentHandler.VerifyPayment)
			}
		}
	}

	return r
}

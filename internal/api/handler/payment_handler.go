package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PaymentHandler là stub cho luồng thanh toán online. Chưa tích hợp cổng
// thanh toán thật; client dùng order_id giả để hoàn tất flow.
type PaymentHandler struct{}

func NewPaymentHandler() *PaymentHandler {
	return &PaymentHandler{}
}

type initiatePaymentRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

type verifyPaymentRequest struct {
	OrderID string `json:"order_id" binding:"required"`
}

// POST /api/payment/initiate
func (h *PaymentHandler) InitiatePayment(c *gin.Context) {
	var req initiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order_id": uuid.New().String(),
		"amount":   req.Amount,
		"currency": "INR",
	})
}

// POST /api/payment/verify
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	var req verifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"verified": true, "message": "Payment successful"})
}

package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"genpay/internal/billing"
	"genpay/internal/models"
	"genpay/internal/services"
)

type PaymentHandler struct {
	Service *services.PaymentService
}

func NewPaymentHandler(service *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{Service: service}
}

type processPaymentRequest struct {
	ClientName   string          `json:"clientName" binding:"required"`
	Amount       decimal.Decimal `json:"amount"`
	LoggedInUser string          `json:"loggedInUser"`
}

// @Summary      Process a payment
// @Description  Atomically records a payment for a client and returns the receipt
// @Tags         Payments
// @Accept       json
// @Produce      json
// @Param        payment  body      processPaymentRequest  true  "Payment submission"
// @Success      200      {object}  models.Receipt
// @Failure      400      {object}  map[string]string
// @Failure      404      {object}  map[string]string
// @Failure      409      {object}  map[string]interface{}
// @Failure      500      {object}  map[string]string
// @Router       /payments/process [post]
func (h *PaymentHandler) Process(c *gin.Context) {
	var req processPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	operator := req.LoggedInUser
	if operator == "" {
		operator = usernameFromCtx(c)
	}
	if operator == "" {
		operator = "Guest"
	}
	instanceID := instanceFromCtx(c)

	receipt, err := h.Service.Process(c.Request.Context(), instanceID, req.ClientName, req.Amount, operator)
	if err != nil {
		var dup *billing.DuplicatePaymentError
		switch {
		case errors.Is(err, billing.ErrInvalidAmount):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Payment amount must be positive"})
		case errors.Is(err, billing.ErrClientNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
		case errors.As(err, &dup):
			c.JSON(http.StatusConflict, gin.H{
				"error":              "Duplicate payment detected",
				"duplicatePaymentId": dup.PaymentID,
			})
		default:
			log.Printf("[payments][process] client=%q operator=%q: %v", req.ClientName, operator, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error while processing payment"})
		}
		return
	}

	c.JSON(http.StatusOK, receipt)
}

// @Summary      List payments
// @Description  Ledger history with optional client/user/date filters
// @Tags         Payments
// @Produce      json
// @Param        client     query     string  false  "Client name filter"
// @Param        user       query     string  false  "Operator filter"
// @Param        from_date  query     string  false  "From date (YYYY-MM-DD)"
// @Param        to_date    query     string  false  "To date (YYYY-MM-DD)"
// @Success      200        {array}   models.Payment
// @Failure      500        {object}  map[string]string
// @Router       /payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	filter := models.PaymentFilter{
		ClientName: c.Query("client"),
		Username:   c.Query("user"),
		FromDate:   c.Query("from_date"),
		ToDate:     c.Query("to_date"),
	}
	payments, err := h.Service.List(c.Request.Context(), instanceFromCtx(c), filter)
	if err != nil {
		log.Printf("[payments][list] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payments"})
		return
	}
	if payments == nil {
		payments = []*models.Payment{}
	}
	c.JSON(http.StatusOK, payments)
}

// @Summary      Total of all payments
// @Tags         Payments
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Router       /payments/total-last [get]
func (h *PaymentHandler) TotalLast(c *gin.Context) {
	total, err := h.Service.TotalPayments(c.Request.Context(), instanceFromCtx(c))
	if err != nil {
		log.Printf("[payments][total] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute total"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": total})
}

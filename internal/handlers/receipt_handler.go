package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"genpay/internal/services"
)

type ReceiptHandler struct {
	Service *services.ReceiptService
}

func NewReceiptHandler(service *services.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{Service: service}
}

// @Summary      Receipt by payment id
// @Tags         Receipts
// @Produce      json
// @Param        payment_id  path      int  true  "Payment id"
// @Success      200         {object}  models.Receipt
// @Failure      404         {object}  map[string]string
// @Router       /receipt/by-id/{payment_id} [get]
func (h *ReceiptHandler) GetByPaymentID(c *gin.Context) {
	paymentID, err := strconv.Atoi(c.Param("payment_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment id"})
		return
	}
	receipt, err := h.Service.GetByPaymentID(c.Request.Context(), instanceFromCtx(c), paymentID)
	if err != nil {
		log.Printf("[receipt][get] payment_id=%d: %v", paymentID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load receipt"})
		return
	}
	if receipt == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
		return
	}
	c.JSON(http.StatusOK, receipt)
}

// @Summary      Printable receipt PDF
// @Tags         Receipts
// @Produce      application/pdf
// @Param        payment_id  path  int  true  "Payment id"
// @Success      200  {file}    file
// @Failure      404  {object}  map[string]string
// @Router       /receipt/by-id/{payment_id}/pdf [get]
func (h *ReceiptHandler) GetPDF(c *gin.Context) {
	paymentID, err := strconv.Atoi(c.Param("payment_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment id"})
		return
	}
	data, err := h.Service.RenderPDF(c.Request.Context(), instanceFromCtx(c), paymentID)
	if err != nil {
		log.Printf("[receipt][pdf] payment_id=%d: %v", paymentID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render receipt"})
		return
	}
	if data == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="receipt_%d.pdf"`, paymentID))
	c.Data(http.StatusOK, "application/pdf", data)
}

type emailReceiptRequest struct {
	To string `json:"to" binding:"required,email"`
}

// @Summary      Email a receipt copy
// @Tags         Receipts
// @Accept       json
// @Produce      json
// @Param        payment_id  path      int                  true  "Payment id"
// @Param        request     body      emailReceiptRequest  true  "Recipient"
// @Success      200         {object}  map[string]bool
// @Failure      404         {object}  map[string]string
// @Router       /receipt/by-id/{payment_id}/email [post]
func (h *ReceiptHandler) Email(c *gin.Context) {
	paymentID, err := strconv.Atoi(c.Param("payment_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment id"})
		return
	}
	var req emailReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	found, err := h.Service.EmailCopy(c.Request.Context(), instanceFromCtx(c), paymentID, req.To)
	if err != nil {
		log.Printf("[receipt][email] payment_id=%d to=%q: %v", paymentID, req.To, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send receipt"})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"genpay/internal/services"
)

type ClientHandler struct {
	Service *services.ClientService
}

func NewClientHandler(service *services.ClientService) *ClientHandler {
	return &ClientHandler{Service: service}
}

// clientResponse is the wire shape the operator UI expects.
func clientResponse(v *services.ClientView) gin.H {
	c := v.Client
	return gin.H{
		"name":           c.Name,
		"monthlyFee":     c.MonthlyFee,
		"prevCounter":    c.PrevCounter,
		"currentCounter": c.CurrentCounter,
		"totalUsage":     v.Billing.TotalUsage,
		"kiloWattPrice":  c.KilowattPrice,
		"amountUsage":    v.Billing.AmountUsage,
		"amountDue":      v.Billing.AmountDue,
		"prevBalance":    c.PrevBalance,
		"currentBalance": c.CurrentBalance,
		"paymentAmt":     c.PaymentAmt,
		"newBalance":     c.NewBalance,
		"lastPaidBy":     c.LastPaidBy,
		"payId":          c.PayID,
		"custID":         c.CustID,
		"isFirstPayment": c.PaymentAmt.IsZero(),
	}
}

// @Summary      Client details
// @Tags         Clients
// @Produce      json
// @Param        name  path      string  true  "Client name"
// @Success      200   {object}  map[string]interface{}
// @Failure      404   {object}  map[string]string
// @Router       /clients/{name} [get]
func (h *ClientHandler) GetByName(c *gin.Context) {
	v, err := h.Service.GetByName(c.Request.Context(), instanceFromCtx(c), c.Param("name"))
	if err != nil {
		log.Printf("[clients][get] name=%q: %v", c.Param("name"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load client"})
		return
	}
	if v == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
		return
	}
	c.JSON(http.StatusOK, clientResponse(v))
}

// @Summary      List active clients
// @Tags         Clients
// @Produce      json
// @Success      200  {array}   map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Router       /clients [get]
func (h *ClientHandler) List(c *gin.Context) {
	views, err := h.Service.ListActive(c.Request.Context(), instanceFromCtx(c))
	if err != nil {
		log.Printf("[clients][list] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load clients"})
		return
	}
	res := make([]gin.H, 0, len(views))
	for _, v := range views {
		res = append(res, clientResponse(v))
	}
	c.JSON(http.StatusOK, res)
}

// @Summary      Search clients by name
// @Tags         Clients
// @Produce      json
// @Param        q      query    string  true   "Search term (min 2 chars)"
// @Param        limit  query    int     false  "Max results"
// @Success      200    {array}  models.ClientSearchRow
// @Router       /clients/search [get]
func (h *ClientHandler) Search(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	rows, err := h.Service.Search(c.Request.Context(), instanceFromCtx(c), c.Query("q"), limit)
	if err != nil {
		log.Printf("[clients][search] q=%q: %v", c.Query("q"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
		return
	}
	c.JSON(http.StatusOK, rows)
}

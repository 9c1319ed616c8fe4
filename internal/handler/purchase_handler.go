package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kelasku/kelasku-api/internal/middleware"
	"github.com/kelasku/kelasku-api/internal/service"
	appErrors "github.com/kelasku/kelasku-api/pkg/errors"
	"github.com/kelasku/kelasku-api/pkg/response"
)

// PurchaseHandler exposes purchase workflow endpoints.
type PurchaseHandler struct {
	purchases *service.PurchaseService
}

// NewPurchaseHandler constructs PurchaseHandler.
func NewPurchaseHandler(purchases *service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchases: purchases}
}

// Initiate godoc
// @Summary Initiate a purchase
// @Tags Purchases
// @Accept json
// @Produce json
// @Param payload body service.InitiatePurchaseRequest true "Purchase payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /purchases [post]
func (h *PurchaseHandler) Initiate(c *gin.Context) {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.InitiatePurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	resp, err := h.purchases.Initiate(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, resp)
}

// Verify godoc
// @Summary Confirm a payment callback
// @Tags Purchases
// @Accept json
// @Produce json
// @Param payload body service.ConfirmPaymentRequest true "Callback payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /purchases/verify [post]
func (h *PurchaseHandler) Verify(c *gin.Context) {
	var req service.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	resp, err := h.purchases.Confirm(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// Receipt godoc
// @Summary Download the PDF receipt of a paid order
// @Tags Purchases
// @Produce application/pdf
// @Param orderId path string true "Order ID"
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /purchases/{orderId}/receipt [get]
func (h *PurchaseHandler) Receipt(c *gin.Context) {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	pdf, err := h.purchases.Receipt(c.Request.Context(), claims.UserID, c.Param("orderId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=receipt-"+c.Param("orderId")+".pdf")
	c.Data(http.StatusOK, "application/pdf", pdf)
}

package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kelasku/kelasku-api/internal/middleware"
	"github.com/kelasku/kelasku-api/internal/service"
	appErrors "github.com/kelasku/kelasku-api/pkg/errors"
	"github.com/kelasku/kelasku-api/pkg/response"
)

// AccessHandler exposes entitlement endpoints.
type AccessHandler struct {
	access *service.AccessService
}

// NewAccessHandler constructs AccessHandler.
func NewAccessHandler(access *service.AccessService) *AccessHandler {
	return &AccessHandler{access: access}
}

// CheckTopic godoc
// @Summary Check access to a single topic
// @Tags Access
// @Produce json
// @Param id path string true "Topic ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /topics/{id}/access [get]
func (h *AccessHandler) CheckTopic(c *gin.Context) {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	access, err := h.access.CheckTopic(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, access, nil)
}

// AccessibleTopics godoc
// @Summary List accessible topics within a category
// @Tags Access
// @Produce json
// @Param id path string true "Category ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /categories/{id}/accessible-topics [get]
func (h *AccessHandler) AccessibleTopics(c *gin.Context) {
	claims, ok := middleware.CurrentUser(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	result, err := h.access.ListAccessible(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

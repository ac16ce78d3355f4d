package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/exchange_desk/internal/core/ports/services"
	"github.com/SscSPs/exchange_desk/internal/dto"
	"github.com/SscSPs/exchange_desk/internal/utils/pagination"
	"github.com/gin-gonic/gin"
)

type orderHandler struct {
	orderService portssvc.OrderHistorySvcFacade
}

func registerOrderRoutes(rg *gin.RouterGroup, orderService portssvc.OrderHistorySvcFacade) {
	h := &orderHandler{orderService: orderService}
	rg.GET("/orders", h.listOrders)
}

// listOrders godoc
// @Summary Order history
// @Description Returns one page of executed exchanges, newest first.
// @Tags orders
// @Produce json
// @Param page query int false "Page number (1-based)" default(1)
// @Param limit query int false "Page size" default(10) maximum(100)
// @Success 200 {object} dto.OrdersPageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Security CookieAuth
// @Router /orders [get]
func (h *orderHandler) listOrders(c *gin.Context) {
	var params dto.ListOrdersParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}
	p, err := pagination.Normalize(params.Page, params.Limit)
	if err != nil {
		respondError(c, err, "Invalid pagination")
		return
	}

	state := h.orderService.GetOrders(c.Request.Context(), p.Page, p.Limit)
	if state.IsError() && !state.HasData {
		respondError(c, state.Err, "Failed to retrieve orders")
		return
	}
	c.JSON(http.StatusOK, dto.ToOrdersPageResponse(state.Data, state.IsStale))
}

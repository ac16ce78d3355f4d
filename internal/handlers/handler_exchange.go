package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/exchange_desk/internal/core/ports/services"
	"github.com/SscSPs/exchange_desk/internal/core/services"
	"github.com/SscSPs/exchange_desk/internal/dto"
	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
)

type exchangeHandler struct {
	exchangeService portssvc.ExchangeSvcFacade
	clock           clockwork.Clock
}

func registerExchangeRoutes(rg *gin.RouterGroup, exchangeService portssvc.ExchangeSvcFacade, clock clockwork.Clock) {
	h := &exchangeHandler{exchangeService: exchangeService, clock: clock}

	exchange := rg.Group("/exchange")
	{
		exchange.POST("", h.placeOrder)
		exchange.GET("/submissions", h.listSubmissions)
	}
}

// placeOrder godoc
// @Summary Place an exchange order
// @Description Places an order priced at a known rate id. A stale rate id answers 409 and marks the cached rates stale.
// @Tags exchange
// @Accept json
// @Produce json
// @Param order body dto.PlaceOrderRequest true "Order"
// @Success 200 {object} dto.ExchangeResponse
// @Failure 400 {object} dto.ExchangeResponse
// @Failure 401 {object} dto.ExchangeResponse
// @Failure 409 {object} dto.ExchangeResponse
// @Failure 500 {object} dto.ExchangeResponse
// @Failure 502 {object} dto.ExchangeResponse
// @Security CookieAuth
// @Router /exchange [post]
func (h *exchangeHandler) placeOrder(c *gin.Context) {
	var req dto.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	fb := services.NewFeedbackRecorder(h.clock)
	result := h.exchangeService.PlaceOrder(c.Request.Context(), req.ToDomain(), fb)
	notifications, navigate := fb.Drain()

	status := http.StatusOK
	if result.ErrorKind != "" {
		status = resultStatus(result)
	}
	c.JSON(status, dto.ExchangeResponse{
		Result:        result,
		Notifications: notifications,
		Navigate:      navigate,
	})
}

// listSubmissions godoc
// @Summary Recent exchange attempts
// @Description Returns the member's recent submissions from the journal, newest first.
// @Tags exchange
// @Produce json
// @Param limit query int false "Maximum entries" default(20) maximum(100)
// @Success 200 {array} dto.SubmissionResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Security CookieAuth
// @Router /exchange/submissions [get]
func (h *exchangeHandler) listSubmissions(c *gin.Context) {
	var params dto.ListSubmissionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}
	records, err := h.exchangeService.ListSubmissions(c.Request.Context(), params.Limit)
	if err != nil {
		respondError(c, err, "Failed to list submissions")
		return
	}
	c.JSON(http.StatusOK, dto.ToSubmissionResponses(records))
}

package handlers

import (
	"net/http"
	"strings"

	"github.com/SscSPs/exchange_desk/internal/apperrors"
	"github.com/SscSPs/exchange_desk/internal/core/domain"
	portssvc "github.com/SscSPs/exchange_desk/internal/core/ports/services"
	"github.com/SscSPs/exchange_desk/internal/dto"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type quoteHandler struct {
	quoteService portssvc.QuoteSvcFacade
}

func registerQuoteRoutes(rg *gin.RouterGroup, quoteService portssvc.QuoteSvcFacade, limit gin.HandlerFunc) {
	h := &quoteHandler{quoteService: quoteService}
	rg.GET("/quote", limit, h.getQuote)
}

// getQuote godoc
// @Summary Price an exchange
// @Description Quotes forexAmount of the foreign side of the pair. A non-positive amount returns an idle quote without contacting the backend.
// @Tags exchange
// @Produce json
// @Param fromCurrency query string true "Source currency" Enums(KRW, USD, JPY)
// @Param toCurrency query string true "Target currency" Enums(KRW, USD, JPY)
// @Param forexAmount query string true "Foreign amount"
// @Success 200 {object} dto.QuoteResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Security CookieAuth
// @Router /quote [get]
func (h *quoteHandler) getQuote(c *gin.Context) {
	var q dto.QuoteQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(q.ForexAmount))
	if err != nil {
		respondError(c, apperrors.NewValidationError("forexAmount must be a number"), "Invalid amount")
		return
	}
	key := domain.QuoteKey{
		Source: domain.Currency(strings.ToUpper(q.FromCurrency)),
		Target: domain.Currency(strings.ToUpper(q.ToCurrency)),
		Amount: amount,
	}

	state := h.quoteService.GetQuote(c.Request.Context(), key)
	if state.IsError() {
		respondError(c, state.Err, "Failed to retrieve quote")
		return
	}
	var quote *domain.Quote
	if state.HasData {
		quote = &state.Data
	}
	c.JSON(http.StatusOK, dto.ToQuoteResponse(key, string(state.Status), quote, state.IsStale))
}

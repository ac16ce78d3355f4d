package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	portssvc "github.com/SscSPs/exchange_desk/internal/core/ports/services"
	"github.com/SscSPs/exchange_desk/internal/dto"
	"github.com/SscSPs/exchange_desk/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
)

// RatesMessage is what the rates socket pushes.
type RatesMessage struct {
	Type    string                     `json:"type"` // "rates" or "error"
	Payload *dto.ExchangeRatesResponse `json:"payload,omitempty"`
	Error   *dto.ErrorResponse         `json:"error,omitempty"`
}

// exchangeRateHandler handles HTTP requests related to exchange rates.
type exchangeRateHandler struct {
	rateService portssvc.RateSvcFacade
	upgrader    websocket.Upgrader
}

func newExchangeRateHandler(rs portssvc.RateSvcFacade, allowedOrigin string) *exchangeRateHandler {
	return &exchangeRateHandler{
		rateService: rs,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigin),
		},
	}
}

// originChecker accepts same-host requests, requests without an Origin and the frontend origin.
func originChecker(allowedOrigin string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || origin == allowedOrigin {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && u.Host == r.Host
	}
}

// registerExchangeRateRoutes registers routes related to exchange rates.
func registerExchangeRateRoutes(rg *gin.RouterGroup, rateService portssvc.RateSvcFacade, allowedOrigin string) {
	h := newExchangeRateHandler(rateService, allowedOrigin)

	rates := rg.Group("/exchange-rates")
	{
		rates.GET("", h.listExchangeRates)
		rates.GET("/ws", h.streamExchangeRates)
	}
}

// listExchangeRates godoc
// @Summary Latest exchange rates
// @Description Returns the cached rate collection, refetching it when stale.
// @Tags exchange rates
// @Produce json
// @Success 200 {object} dto.ExchangeRatesResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Security CookieAuth
// @Router /exchange-rates [get]
func (h *exchangeRateHandler) listExchangeRates(c *gin.Context) {
	state := h.rateService.GetRates(c.Request.Context())
	if state.IsError() && !state.HasData {
		respondError(c, state.Err, "Failed to retrieve exchange rates")
		return
	}
	c.JSON(http.StatusOK, dto.ToExchangeRatesResponse(state.Data, state.IsStale, state.FetchedAt))
}

// streamExchangeRates godoc
// @Summary Live exchange rates
// @Description Upgrades to a WebSocket that pushes the rate collection whenever it is refetched or invalidated.
// @Tags exchange rates
// @Success 101
// @Failure 401 {object} dto.ErrorResponse
// @Security CookieAuth
// @Router /exchange-rates/ws [get]
func (h *exchangeRateHandler) streamExchangeRates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader already answered the client
		logger.Warn("Failed to upgrade to WebSocket", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	// The request context carries the session and logger; cancel it ourselves
	// once the client goes away.
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	changed, unsubscribe := h.rateService.SubscribeRates()
	defer unsubscribe()
	stopWatch := h.rateService.WatchRates(ctx)
	defer stopWatch()

	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					logger.Warn("WebSocket read error", slog.String("error", err.Error()))
				}
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	logger.Info("Rate stream opened")
	if !h.pushRates(ctx, conn) {
		return
	}
	for {
		select {
		case <-changed:
			if !h.pushRates(ctx, conn) {
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ctx.Done():
			logger.Info("Rate stream closed")
			return
		}
	}
}

// pushRates writes the current rates. An invalidation is followed by a read
// that refetches, so the client always receives fresh data after a change.
func (h *exchangeRateHandler) pushRates(ctx context.Context, conn *websocket.Conn) bool {
	state := h.rateService.GetRates(ctx)
	if ctx.Err() != nil {
		return false
	}
	msg := RatesMessage{Type: "rates"}
	if state.HasData {
		payload := dto.ToExchangeRatesResponse(state.Data, state.IsStale, state.FetchedAt)
		msg.Payload = &payload
	} else if state.Err != nil {
		msg.Type = "error"
		msg.Error = &dto.ErrorResponse{Code: "RATES_UNAVAILABLE", Message: state.Err.Error()}
	}
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	if err := conn.WriteJSON(msg); err != nil {
		middleware.GetLoggerFromCtx(ctx).Warn("Failed to send WebSocket message", slog.String("error", err.Error()))
		return false
	}
	return true
}

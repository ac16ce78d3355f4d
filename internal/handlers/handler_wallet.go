package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/exchange_desk/internal/core/ports/services"
	"github.com/SscSPs/exchange_desk/internal/dto"
	"github.com/gin-gonic/gin"
)

type walletHandler struct {
	walletService portssvc.WalletSvcFacade
}

func registerWalletRoutes(rg *gin.RouterGroup, walletService portssvc.WalletSvcFacade) {
	h := &walletHandler{walletService: walletService}
	rg.GET("/wallets", h.getWallets)
}

// getWallets godoc
// @Summary Member wallets
// @Description Returns the member's balances. refresh=true bypasses the cache.
// @Tags wallets
// @Produce json
// @Param refresh query bool false "Bypass the cache"
// @Success 200 {object} dto.WalletSummaryResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Security CookieAuth
// @Router /wallets [get]
func (h *walletHandler) getWallets(c *gin.Context) {
	if c.Query("refresh") == "true" {
		summary, err := h.walletService.RefetchWallets(c.Request.Context())
		if err != nil {
			respondError(c, err, "Failed to retrieve wallets")
			return
		}
		c.JSON(http.StatusOK, dto.ToWalletSummaryResponse(summary))
		return
	}

	state := h.walletService.GetWallets(c.Request.Context())
	if state.IsError() && !state.HasData {
		respondError(c, state.Err, "Failed to retrieve wallets")
		return
	}
	c.JSON(http.StatusOK, dto.ToWalletSummaryResponse(state.Data))
}

package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/exchange_desk/internal/core/ports/services"
	"github.com/SscSPs/exchange_desk/internal/dto"
	"github.com/gin-gonic/gin"
)

const deskNotOpen = "Exchange form is not open"

// deskHandler exposes the member's server-side exchange form.
type deskHandler struct {
	deskService portssvc.DeskSvcFacade
}

func registerDeskRoutes(rg *gin.RouterGroup, deskService portssvc.DeskSvcFacade) {
	h := &deskHandler{deskService: deskService}

	desk := rg.Group("/desk")
	{
		desk.POST("", h.open)
		desk.GET("", h.snapshot)
		desk.DELETE("", h.close)
		desk.PUT("/amount", h.setAmount)
		desk.PUT("/selection", h.setSelection)
		desk.POST("/swap", h.swap)
		desk.POST("/reset", h.reset)
		desk.POST("/submit", h.submit)
	}
}

// open godoc
// @Summary Open the exchange form
// @Description Creates the member's exchange form, replacing any open one.
// @Tags desk
// @Produce json
// @Success 201 {object} services.DeskSnapshot
// @Failure 401 {object} dto.ErrorResponse
// @Security CookieAuth
// @Router /desk [post]
func (h *deskHandler) open(c *gin.Context) {
	snap, err := h.deskService.Open(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to open exchange form")
		return
	}
	c.JSON(http.StatusCreated, snap)
}

// snapshot godoc
// @Summary Exchange form state
// @Tags desk
// @Produce json
// @Success 200 {object} services.DeskSnapshot
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security CookieAuth
// @Router /desk [get]
func (h *deskHandler) snapshot(c *gin.Context) {
	snap, err := h.deskService.Snapshot(c.Request.Context())
	if err != nil {
		respondError(c, err, deskNotOpen)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// setAmount godoc
// @Summary Type an amount
// @Description Sets the raw amount text. The quote is requested once typing settles.
// @Tags desk
// @Accept json
// @Produce json
// @Param amount body dto.SetAmountRequest true "Amount as typed"
// @Success 200 {object} services.DeskSnapshot
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security CookieAuth
// @Router /desk/amount [put]
func (h *deskHandler) setAmount(c *gin.Context) {
	var req dto.SetAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	snap, err := h.deskService.SetAmount(c.Request.Context(), req.Amount)
	if err != nil {
		respondError(c, err, deskNotOpen)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// setSelection godoc
// @Summary Choose the currency pair
// @Tags desk
// @Accept json
// @Produce json
// @Param selection body dto.SetSelectionRequest true "Selection"
// @Success 200 {object} services.DeskSnapshot
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security CookieAuth
// @Router /desk/selection [put]
func (h *deskHandler) setSelection(c *gin.Context) {
	var req dto.SetSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	snap, err := h.deskService.SetSelection(c.Request.Context(), req.ToDomain())
	if err != nil {
		respondError(c, err, deskNotOpen)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// swap godoc
// @Summary Swap source and target
// @Tags desk
// @Produce json
// @Success 200 {object} services.DeskSnapshot
// @Failure 404 {object} dto.ErrorResponse
// @Security CookieAuth
// @Router /desk/swap [post]
func (h *deskHandler) swap(c *gin.Context) {
	snap, err := h.deskService.Swap(c.Request.Context())
	if err != nil {
		respondError(c, err, deskNotOpen)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// reset godoc
// @Summary Reset the selection
// @Tags desk
// @Produce json
// @Success 200 {object} services.DeskSnapshot
// @Failure 404 {object} dto.ErrorResponse
// @Security CookieAuth
// @Router /desk/reset [post]
func (h *deskHandler) reset(c *gin.Context) {
	snap, err := h.deskService.Reset(c.Request.Context())
	if err != nil {
		respondError(c, err, deskNotOpen)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// submit godoc
// @Summary Submit the exchange
// @Description Re-fetches the rates, places the order at the current rate id and returns the drained feedback.
// @Tags desk
// @Produce json
// @Success 200 {object} dto.DeskSubmitResponse
// @Failure 400 {object} dto.ErrorResponse "Form not ready to submit"
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.DeskSubmitResponse "Rate changed, or a submission is already running"
// @Failure 502 {object} dto.DeskSubmitResponse
// @Security CookieAuth
// @Router /desk/submit [post]
func (h *deskHandler) submit(c *gin.Context) {
	snap, result, err := h.deskService.Submit(c.Request.Context())
	if err != nil {
		respondError(c, err, deskNotOpen)
		return
	}
	status := http.StatusOK
	if result.ErrorKind != "" {
		status = resultStatus(result)
	}
	c.JSON(status, dto.DeskSubmitResponse{Desk: snap, Result: result})
}

// close godoc
// @Summary Close the exchange form
// @Tags desk
// @Success 204
// @Failure 401 {object} dto.ErrorResponse
// @Security CookieAuth
// @Router /desk [delete]
func (h *deskHandler) close(c *gin.Context) {
	if err := h.deskService.Close(c.Request.Context()); err != nil {
		respondError(c, err, "Failed to close exchange form")
		return
	}
	c.Status(http.StatusNoContent)
}

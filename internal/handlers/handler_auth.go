package handlers

import (
	"log/slog"
	"net/http"
	"time"

	portssvc "github.com/SscSPs/exchange_desk/internal/core/ports/services"
	"github.com/SscSPs/exchange_desk/internal/dto"
	"github.com/SscSPs/exchange_desk/internal/middleware"
	"github.com/SscSPs/exchange_desk/internal/platform/config"
	"github.com/gin-gonic/gin"
)

// authHandler handles authentication related requests.
type authHandler struct {
	authService portssvc.AuthSvcFacade
	cookieName  string
	secure      bool
}

func newAuthHandler(as portssvc.AuthSvcFacade, cfg *config.Config) *authHandler {
	return &authHandler{
		authService: as,
		cookieName:  cfg.SessionCookieName,
		secure:      cfg.IsProduction,
	}
}

// registerAuthRoutes sets up the routes for authentication. Login is public and
// rate limited; logout needs a session.
func registerAuthRoutes(r *gin.Engine, cfg *config.Config, authService portssvc.AuthSvcFacade, loginLimit gin.HandlerFunc, session gin.HandlerFunc) {
	h := newAuthHandler(authService, cfg)

	auth := r.Group("/api/auth")
	{
		auth.POST("/login", loginLimit, h.login)
		auth.POST("/logout", session, h.logout)
	}
}

// login godoc
// @Summary Member login
// @Description Signs in with the exchange backend and sets the session cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param login body dto.LoginRequest true "Login email"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /auth/login [post]
func (h *authHandler) login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	session, token, expiresAt, err := h.authService.Login(c.Request.Context(), req.Email)
	if err != nil {
		respondError(c, err, "Login failed")
		return
	}

	h.setSessionCookie(c, token, int(time.Until(expiresAt).Seconds()))
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Member logged in", slog.String("member_id", session.MemberID))
	c.JSON(http.StatusOK, dto.LoginResponse{
		MemberID:  session.MemberID,
		Email:     session.Email,
		ExpiresAt: expiresAt,
	})
}

// logout godoc
// @Summary Member logout
// @Description Clears the session cookie, closes the exchange form and drops cached data.
// @Tags auth
// @Success 204
// @Failure 401 {object} dto.ErrorResponse
// @Security CookieAuth
// @Router /auth/logout [post]
func (h *authHandler) logout(c *gin.Context) {
	memberID, _ := middleware.GetMemberIDFromContext(c)
	h.authService.Logout(c.Request.Context(), memberID)
	h.setSessionCookie(c, "", -1)
	c.Status(http.StatusNoContent)
}

func (h *authHandler) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(h.cookieName, value, maxAge, "/", "", h.secure, true)
}

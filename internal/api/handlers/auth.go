package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/alexchny/event-relay/internal/service"
	"github.com/alexchny/event-relay/internal/session"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Authenticator interface {
	Authenticate(email, password string) error
}

type AuthHandler struct {
	auth     Authenticator
	sessions *session.Manager
	logger   *zap.Logger
}

func NewAuthHandler(auth Authenticator, sessions *session.Manager, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		auth:     auth,
		sessions: sessions,
		logger:   logger,
	}
}

type loginForm struct {
	Email      string `form:"email"`
	Password   string `form:"password"`
	RedirectTo string `form:"redirectTo"`
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	if h.sessions.Get(c.Request).IsAuthenticated() {
		c.Redirect(http.StatusFound, "/events")
		return
	}

	c.HTML(http.StatusOK, "login.html", gin.H{
		"Email":      "",
		"RedirectTo": c.Query("redirectTo"),
		"Error":      "",
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.auth.Authenticate(form.Email, form.Password); err != nil {
		if !errors.Is(err, service.ErrInvalidCredentials) {
			_ = c.Error(err)
			return
		}
		h.logger.Info("admin login rejected", zap.String("client_ip", c.ClientIP()))
		c.HTML(http.StatusUnauthorized, "login.html", gin.H{
			"Email":      form.Email,
			"RedirectTo": form.RedirectTo,
			"Error":      "Invalid email or password.",
		})
		return
	}

	sess := h.sessions.Get(c.Request)
	sess.Email = strings.ToLower(strings.TrimSpace(form.Email))

	cookie, err := h.sessions.Commit(sess)
	if err != nil {
		_ = c.Error(err)
		return
	}

	http.SetCookie(c.Writer, cookie)
	c.Redirect(http.StatusFound, safeRedirect(form.RedirectTo))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	http.SetCookie(c.Writer, h.sessions.Destroy())
	c.Redirect(http.StatusFound, "/login")
}

// safeRedirect only allows local paths, falling back to the events list.
func safeRedirect(target string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return "/events"
	}
	return target
}

package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/alexchny/event-relay/internal/domain"
	"github.com/alexchny/event-relay/internal/session"
	"github.com/gin-gonic/gin"
)

const SyncEventSuccessMessage = "Event is being synced. Check back soon."

type SyncRequester interface {
	RequestSync(ctx context.Context, req domain.SyncRequest) (*domain.Job, error)
}

type SyncEventHandler struct {
	requester SyncRequester
	sessions  *session.Manager
}

func NewSyncEventHandler(requester SyncRequester, sessions *session.Manager) *SyncEventHandler {
	return &SyncEventHandler{
		requester: requester,
		sessions:  sessions,
	}
}

func (h *SyncEventHandler) Show(c *gin.Context) {
	c.HTML(http.StatusOK, "sync_event.html", gin.H{
		"EventID": "",
		"Errors":  map[string]string{},
	})
}

func (h *SyncEventHandler) Submit(c *gin.Context) {
	var req domain.SyncRequest
	if err := c.ShouldBind(&req); err != nil {
		_ = c.Error(err)
		return
	}

	_, err := h.requester.RequestSync(c.Request.Context(), req)

	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		c.HTML(http.StatusBadRequest, "sync_event.html", gin.H{
			"EventID": req.EventID,
			"Errors":  validationErr.Fields(),
		})
		return
	}
	if err != nil {
		_ = c.Error(err)
		return
	}

	sess := currentSession(c)
	sess.SetToast(SyncEventSuccessMessage, session.ToastSuccess)

	cookie, err := h.sessions.Commit(sess)
	if err != nil {
		_ = c.Error(err)
		return
	}

	http.SetCookie(c.Writer, cookie)
	c.Redirect(http.StatusFound, "/events")
}

package handlers

import (
	"context"
	"net/http"

	"github.com/alexchny/event-relay/internal/domain"
	"github.com/alexchny/event-relay/internal/session"
	"github.com/gin-gonic/gin"
)

const (
	recentEventsLimit = 50
	deadLettersLimit  = 20
)

type EventLister interface {
	ListRecent(ctx context.Context, limit int) ([]*domain.Event, error)
}

// QueueInspector exposes the backlog and the failed jobs of a queue that
// keeps them locally. The SQS backend has none.
type QueueInspector interface {
	Len(ctx context.Context) (int64, error)
	DeadLetters(ctx context.Context, limit int) ([]*domain.Job, error)
}

type queueStats struct {
	Pending int64
	Failed  []*domain.Job
}

type EventsHandler struct {
	events   EventLister
	queue    QueueInspector
	sessions *session.Manager
}

// NewEventsHandler builds the listing handler. queue may be nil.
func NewEventsHandler(events EventLister, queue QueueInspector, sessions *session.Manager) *EventsHandler {
	return &EventsHandler{
		events:   events,
		queue:    queue,
		sessions: sessions,
	}
}

// List renders recently synced events and consumes the pending toast.
func (h *EventsHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	events, err := h.events.ListRecent(ctx, recentEventsLimit)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var stats *queueStats
	if h.queue != nil {
		stats = &queueStats{}
		if stats.Pending, err = h.queue.Len(ctx); err != nil {
			_ = c.Error(err)
			return
		}
		if stats.Failed, err = h.queue.DeadLetters(ctx, deadLettersLimit); err != nil {
			_ = c.Error(err)
			return
		}
	}

	sess := currentSession(c)
	toast := sess.PopToast()
	if toast != nil {
		cookie, err := h.sessions.Commit(sess)
		if err != nil {
			_ = c.Error(err)
			return
		}
		http.SetCookie(c.Writer, cookie)
	}

	c.HTML(http.StatusOK, "events.html", gin.H{
		"Events": events,
		"Queue":  stats,
		"Toast":  toast,
		"Email":  sess.Email,
	})
}

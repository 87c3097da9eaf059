package airmeet

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alexchny/event-relay/internal/domain"
	"github.com/alexchny/event-relay/internal/ports"
)

type eventInfo struct {
	UID       string `json:"uid"`
	Name      string `json:"name"`
	StartTime int64  `json:"start_time"`
	EndTime   int64  `json:"end_time"`
	Timezone  string `json:"timezone"`
	Status    string `json:"status"`
}

type participant struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	RegisteredAt int64  `json:"registered_at"`
}

type participantsResponse struct {
	Data    []participant `json:"data"`
	Cursors struct {
		After string `json:"after"`
	} `json:"cursors"`
}

func (a *Adapter) GetEvent(ctx context.Context, externalID string) (*domain.Event, error) {
	var info eventInfo
	path := fmt.Sprintf("/airmeet/%s/info", url.PathEscape(externalID))

	if err := a.doAuthed(ctx, http.MethodGet, path, nil, &info); err != nil {
		return nil, mapNotFound(err)
	}

	return &domain.Event{
		ExternalID: externalID,
		Name:       info.Name,
		StartTime:  fromMillis(info.StartTime),
		EndTime:    fromMillis(info.EndTime),
		Timezone:   info.Timezone,
		Status:     parseStatus(info.Status),
	}, nil
}

func (a *Adapter) ListAttendees(ctx context.Context, externalID, cursor string) (*ports.AttendeePage, error) {
	query := url.Values{}
	query.Set("size", strconv.Itoa(a.pageSize))
	if cursor != "" {
		query.Set("after", cursor)
	}

	var resp participantsResponse
	path := fmt.Sprintf("/airmeet/%s/participants", url.PathEscape(externalID))

	if err := a.doAuthed(ctx, http.MethodGet, path, query, &resp); err != nil {
		return nil, mapNotFound(err)
	}

	page := &ports.AttendeePage{
		Attendees:  make([]*domain.Attendee, 0, len(resp.Data)),
		NextCursor: resp.Cursors.After,
	}
	for _, p := range resp.Data {
		attendee := &domain.Attendee{Email: p.Email, Name: p.Name}
		if p.RegisteredAt > 0 {
			t := fromMillis(p.RegisteredAt)
			attendee.RegisteredAt = &t
		}
		page.Attendees = append(page.Attendees, attendee)
	}

	return page, nil
}

func mapNotFound(err error) error {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %w", ports.ErrEventNotFound, err)
	}
	return err
}

func parseStatus(s string) domain.EventStatus {
	switch status := domain.EventStatus(strings.ToLower(s)); status {
	case domain.EventStatusOngoing, domain.EventStatusFinished, domain.EventStatusCancelled:
		return status
	default:
		return domain.EventStatusCreated
	}
}

func fromMillis(ms int64) time.Time {
	if ms <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

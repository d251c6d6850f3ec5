package calendar

import (
	"context"
	"fmt"
	"net/http"
	"time"

	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/raphaelgruber/studymate/internal/models"
)

// Client is a thin call-through to the Google Calendar API. It only reads
// the user's primary calendar.
type Client struct {
	svc *gcal.Service
}

// NewClient builds an API client from the stored credential. Extra options
// are appended after the token source; tests use them to point the client at
// a fake server.
func NewClient(ctx context.Context, auth *Authenticator, opts ...option.ClientOption) (*Client, error) {
	ts, err := auth.TokenSource(ctx)
	if err != nil {
		return nil, err
	}

	all := append([]option.ClientOption{option.WithTokenSource(ts)}, opts...)
	svc, err := gcal.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// NewClientWithService wraps an already-built service. Used by tests.
func NewClientWithService(svc *gcal.Service) *Client {
	return &Client{svc: svc}
}

// Events lists events between start and end in chronological order.
func (c *Client) Events(ctx context.Context, start, end time.Time, max int64) ([]models.Event, error) {
	call := c.svc.Events.List("primary").
		TimeMin(start.Format(time.RFC3339)).
		TimeMax(end.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(max).
		Context(ctx)

	result, err := call.Do()
	if err != nil {
		return nil, mapError(err)
	}
	return convertEvents(result.Items), nil
}

// Search lists upcoming events matching a free-text query.
func (c *Client) Search(ctx context.Context, query string, max int64) ([]models.Event, error) {
	call := c.svc.Events.List("primary").
		Q(query).
		TimeMin(time.Now().Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(max).
		Context(ctx)

	result, err := call.Do()
	if err != nil {
		return nil, mapError(err)
	}
	return convertEvents(result.Items), nil
}

func convertEvents(items []*gcal.Event) []models.Event {
	out := make([]models.Event, 0, len(items))
	for _, item := range items {
		ev, ok := convertEvent(item)
		if !ok {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// convertEvent maps an API event to the local model. All-day events carry a
// date instead of a datetime.
func convertEvent(item *gcal.Event) (models.Event, bool) {
	if item == nil || item.Start == nil {
		return models.Event{}, false
	}

	ev := models.Event{
		ID:          item.Id,
		Title:       item.Summary,
		Location:    item.Location,
		Description: item.Description,
	}
	if ev.Title == "" {
		ev.Title = "(no title)"
	}

	if item.Start.DateTime != "" {
		start, err := time.Parse(time.RFC3339, item.Start.DateTime)
		if err != nil {
			return models.Event{}, false
		}
		ev.Start = start
		if item.End != nil && item.End.DateTime != "" {
			if end, err := time.Parse(time.RFC3339, item.End.DateTime); err == nil {
				ev.End = end
			}
		}
		return ev, true
	}

	// All-day event
	start, err := time.Parse("2006-01-02", item.Start.Date)
	if err != nil {
		return models.Event{}, false
	}
	ev.Start = start
	ev.End = start.AddDate(0, 0, 1)
	ev.AllDay = true
	if item.End != nil && item.End.Date != "" {
		if end, err := time.Parse("2006-01-02", item.End.Date); err == nil {
			ev.End = end
		}
	}
	return ev, true
}

// mapError folds API failures into the package's error taxonomy.
func mapError(err error) error {
	if apiErr, ok := err.(*googleapi.Error); ok {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %v", ErrAuthRequired, err)
		default:
			if apiErr.Code >= 500 {
				return fmt.Errorf("%w: %v", ErrUnavailable, err)
			}
			return fmt.Errorf("list events: %w", err)
		}
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

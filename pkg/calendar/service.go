package calendar

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const (
	lookahead = 7 * 24 * time.Hour
	maxEvents = 50
)

// Event is an upcoming calendar entry
type Event struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Start       string `json:"start"`
	End         string `json:"end"`
	AllDay      bool   `json:"allDay"`
	Location    string `json:"location,omitempty"`
	HTMLLink    string `json:"htmlLink,omitempty"`
	Status      string `json:"status,omitempty"`
}

// ClientProvider supplies an authorized HTTP client
type ClientProvider interface {
	HTTPClient(ctx context.Context) (*http.Client, error)
}

type Service struct {
	auth    ClientProvider
	options []option.ClientOption
	now     func() time.Time
}

// NewService creates a calendar events producer
func NewService(auth ClientProvider, opts ...option.ClientOption) *Service {
	return &Service{
		auth:    auth,
		options: opts,
		now:     time.Now,
	}
}

// UpcomingEvents lists single events on the primary calendar for the next 7 days
func (s *Service) UpcomingEvents(ctx context.Context) ([]Event, error) {
	client, err := s.auth.HTTPClient(ctx)
	if err != nil {
		return nil, err
	}

	opts := append([]option.ClientOption{option.WithHTTPClient(client)}, s.options...)
	srv, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Calendar service: %w", err)
	}

	now := s.now()
	resp, err := srv.Events.List("primary").
		TimeMin(now.Format(time.RFC3339)).
		TimeMax(now.Add(lookahead).Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(maxEvents).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("unable to list events: %w", err)
	}

	events := make([]Event, 0, len(resp.Items))
	for _, item := range resp.Items {
		events = append(events, toEvent(item))
	}
	log.Printf("[Calendar] Loaded %d upcoming events", len(events))
	return events, nil
}

func toEvent(item *calendar.Event) Event {
	event := Event{
		ID:          item.Id,
		Title:       item.Summary,
		Description: item.Description,
		Location:    item.Location,
		HTMLLink:    item.HtmlLink,
		Status:      item.Status,
	}
	if item.Start != nil {
		event.Start = item.Start.DateTime
		if event.Start == "" {
			event.Start = item.Start.Date
			event.AllDay = true
		}
	}
	if item.End != nil {
		event.End = item.End.DateTime
		if event.End == "" {
			event.End = item.End.Date
		}
	}
	return event
}

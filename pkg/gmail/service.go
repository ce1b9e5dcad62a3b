package gmail

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strings"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const (
	perQueryLimit = 10
	maxActions    = 20
)

// ActionQueries select unread mail that likely asks for something
var ActionQueries = []string{
	"is:unread subject:(action required)",
	"is:unread subject:(todo)",
	"is:unread subject:(please review)",
	"is:unread subject:(urgent)",
	"is:starred is:unread",
}

var (
	replyPrefix    = regexp.MustCompile(`(?i)^(RE:|FW:|Fwd:)\s*`)
	bracketTag     = regexp.MustCompile(`\[.*?\]`)
	actionRequired = regexp.MustCompile(`(?i)action required:?\s*`)
)

// ActionEmail is an email turned into a suggested task
type ActionEmail struct {
	ID         string `json:"id"`
	ThreadID   string `json:"threadId"`
	Subject    string `json:"subject"`
	From       string `json:"from"`
	Date       string `json:"date"`
	ActionText string `json:"actionText"`
	HasAction  bool   `json:"hasAction"`
}

// ClientProvider supplies an authorized HTTP client
type ClientProvider interface {
	HTTPClient(ctx context.Context) (*http.Client, error)
}

type Service struct {
	auth    ClientProvider
	options []option.ClientOption
}

// NewService creates a Gmail action producer. opts are appended to the
// API client options, e.g. option.WithEndpoint in tests
func NewService(auth ClientProvider, opts ...option.ClientOption) *Service {
	return &Service{
		auth:    auth,
		options: opts,
	}
}

// GetGmailService creates a Gmail API service for the stored account
func (s *Service) GetGmailService(ctx context.Context) (*gmail.Service, error) {
	client, err := s.auth.HTTPClient(ctx)
	if err != nil {
		return nil, err
	}

	opts := append([]option.ClientOption{option.WithHTTPClient(client)}, s.options...)
	srv, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %w", err)
	}
	return srv, nil
}

// ActionEmails runs every action query and returns up to 20 emails, one per thread
func (s *Service) ActionEmails(ctx context.Context) ([]ActionEmail, error) {
	srv, err := s.GetGmailService(ctx)
	if err != nil {
		return nil, err
	}

	user := "me"
	var all []ActionEmail
	for _, query := range ActionQueries {
		resp, err := srv.Users.Messages.List(user).Q(query).MaxResults(perQueryLimit).Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("unable to search %q: %w", query, err)
		}

		for _, msg := range resp.Messages {
			full, err := srv.Users.Messages.Get(user, msg.Id).
				Format("metadata").
				MetadataHeaders("Subject", "From", "Date").
				Context(ctx).
				Do()
			if err != nil {
				return nil, fmt.Errorf("unable to fetch message %s: %w", msg.Id, err)
			}
			all = append(all, toActionEmail(full))
		}
	}

	actions := dedupeByThread(all)
	if len(actions) > maxActions {
		actions = actions[:maxActions]
	}
	log.Printf("[Gmail] Found %d action emails", len(actions))
	return actions, nil
}

func toActionEmail(msg *gmail.Message) ActionEmail {
	subject, from, date := "No Subject", "Unknown", ""
	if msg.Payload != nil {
		for _, header := range msg.Payload.Headers {
			switch header.Name {
			case "Subject":
				subject = header.Value
			case "From":
				from = header.Value
			case "Date":
				date = header.Value
			}
		}
	}

	return ActionEmail{
		ID:         msg.Id,
		ThreadID:   msg.ThreadId,
		Subject:    subject,
		From:       from,
		Date:       date,
		ActionText: "Respond to: " + ActionText(subject),
		HasAction:  true,
	}
}

// ActionText strips reply prefixes, bracketed tags and "action required"
func ActionText(subject string) string {
	text := replyPrefix.ReplaceAllString(subject, "")
	text = strings.TrimSpace(bracketTag.ReplaceAllString(text, ""))
	if strings.Contains(strings.ToLower(text), "action required") {
		text = actionRequired.ReplaceAllString(text, "")
	}
	return text
}

// dedupeByThread keeps the last email of each thread at the position the
// thread first appeared
func dedupeByThread(emails []ActionEmail) []ActionEmail {
	index := make(map[string]int, len(emails))
	unique := make([]ActionEmail, 0, len(emails))
	for _, email := range emails {
		if i, ok := index[email.ThreadID]; ok {
			unique[i] = email
			continue
		}
		index[email.ThreadID] = len(unique)
		unique = append(unique, email)
	}
	return unique
}

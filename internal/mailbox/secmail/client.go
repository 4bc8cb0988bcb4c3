// Package secmail provisions random mailboxes from a stateless 1secmail-style
// API. Mailboxes need no account: the address alone identifies the inbox.
package secmail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/zarlcorp/zprofile/internal/mailbox"
)

// Name identifies this backend in configuration and stored mailboxes.
const Name = "secmail"

// DefaultBaseURL is the public API endpoint.
const DefaultBaseURL = "https://www.1secmail.com/api/v1/"

// Client talks to a 1secmail-style API.
type Client struct {
	baseURL   string
	transport *mailbox.Transport
	now       func() time.Time
}

// NewClient creates a client. An empty baseURL selects DefaultBaseURL.
func NewClient(baseURL string, t *mailbox.Transport) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if t == nil {
		t = mailbox.NewTransport(mailbox.TransportConfig{}, nil)
	}
	return &Client{
		baseURL:   baseURL,
		transport: t,
		now:       time.Now,
	}
}

// Name implements mailbox.Provider.
func (c *Client) Name() string { return Name }

// Provision asks the API for one random address.
func (c *Client) Provision(ctx context.Context) (mailbox.Mailbox, error) {
	q := url.Values{}
	q.Set("action", "genRandomMailbox")
	q.Set("count", "1")

	var addrs []string
	if err := c.get(ctx, q, &addrs); err != nil {
		return mailbox.Mailbox{}, mailbox.Wrap(Name, "provision", err)
	}
	if len(addrs) == 0 {
		return mailbox.Mailbox{}, mailbox.Wrap(Name, "provision",
			fmt.Errorf("%w: empty address list", mailbox.ErrMalformed))
	}

	login, domain, err := mailbox.SplitAddress(addrs[0])
	if err != nil {
		return mailbox.Mailbox{}, mailbox.Wrap(Name, "provision",
			fmt.Errorf("%w: %w", mailbox.ErrMalformed, err))
	}

	return mailbox.Mailbox{
		ID:        uuid.NewString(),
		Backend:   Name,
		Address:   login + "@" + domain,
		Login:     login,
		Domain:    domain,
		CreatedAt: c.now(),
	}, nil
}

// ListMessages returns the inbox summaries in provider order.
func (c *Client) ListMessages(ctx context.Context, mb mailbox.Mailbox) ([]mailbox.Summary, error) {
	q, err := inboxQuery(mb, "getMessages")
	if err != nil {
		return nil, mailbox.Wrap(Name, "list messages", err)
	}

	var resp []messageSummary
	if err := c.get(ctx, q, &resp); err != nil {
		return nil, mailbox.Wrap(Name, "list messages", err)
	}

	summaries := make([]mailbox.Summary, len(resp))
	for i, m := range resp {
		summaries[i] = mailbox.Summary{
			ID:      string(m.ID),
			From:    m.From,
			Subject: mailbox.Subject(m.Subject),
			Date:    mailbox.ParseDate(m.Date),
		}
	}
	return summaries, nil
}

// FetchMessage reads a full message. The HTML body is preferred; plain text is
// escaped and wrapped in <pre>.
func (c *Client) FetchMessage(ctx context.Context, mb mailbox.Mailbox, id string) (mailbox.Message, error) {
	q, err := inboxQuery(mb, "readMessage")
	if err != nil {
		return mailbox.Message{}, mailbox.Wrap(Name, "fetch message", err)
	}
	q.Set("id", id)

	var m fullMessage
	if err := c.get(ctx, q, &m); err != nil {
		return mailbox.Message{}, mailbox.Wrap(Name, "fetch message", err)
	}
	if m.ID == "" {
		m.ID = flexID(id)
	}

	msg := mailbox.Message{
		Summary: mailbox.Summary{
			ID:      string(m.ID),
			From:    m.From,
			Subject: mailbox.Subject(m.Subject),
			Date:    mailbox.ParseDate(m.Date),
		},
	}

	switch {
	case m.HTMLBody != "":
		msg.Body = m.HTMLBody
		msg.HTML = true
		msg.Preview = mailbox.Preview(mailbox.PlainText(m.HTMLBody), 80)
	default:
		text := m.TextBody
		if text == "" {
			text = m.Body
		}
		msg.Body = mailbox.WrapPlain(text)
		msg.Preview = mailbox.Preview(text, 80)
	}

	return msg, nil
}

func inboxQuery(mb mailbox.Mailbox, action string) (url.Values, error) {
	login, domain := mb.Login, mb.Domain
	if login == "" || domain == "" {
		var err error
		login, domain, err = mailbox.SplitAddress(mb.Address)
		if err != nil {
			return nil, err
		}
	}

	q := url.Values{}
	q.Set("action", action)
	q.Set("login", login)
	q.Set("domain", domain)
	return q, nil
}

func (c *Client) get(ctx context.Context, q url.Values, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.transport.Do(req)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(resp.Body, v); err != nil {
		return fmt.Errorf("%w: unmarshal: %w", mailbox.ErrMalformed, err)
	}
	return nil
}

type messageSummary struct {
	ID      flexID `json:"id"`
	From    string `json:"from"`
	Subject string `json:"subject"`
	Date    string `json:"date"`
}

type fullMessage struct {
	ID       flexID `json:"id"`
	From     string `json:"from"`
	Subject  string `json:"subject"`
	Date     string `json:"date"`
	Body     string `json:"body"`
	TextBody string `json:"textBody"`
	HTMLBody string `json:"htmlBody"`
}

// flexID accepts message ids encoded as JSON numbers or strings.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("message id: %w", err)
	}
	*f = flexID(strconv.FormatInt(n, 10))
	return nil
}

// Package mailtm provisions mailboxes from a stateful mail.tm-style API:
// domain discovery, account creation, then a bearer token for reading.
package mailtm

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zarlcorp/zprofile/internal/mailbox"
)

// Name identifies this backend in configuration and stored mailboxes.
const Name = "mailtm"

// DefaultBaseURL is the public API endpoint.
const DefaultBaseURL = "https://api.mail.tm"

// Response formats accepted by the API.
const (
	FormatJSON = "json"
	FormatXML  = "xml"
)

const (
	localPartLen = 12
	passwordLen  = 16
	previewLen   = 80
)

const (
	lowerAlnum = "abcdefghijklmnopqrstuvwxyz0123456789"
	alnum      = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// Client talks to a mail.tm-style API.
type Client struct {
	baseURL   string
	format    string
	transport *mailbox.Transport
	now       func() time.Time
}

// NewClient creates a client. An empty baseURL selects DefaultBaseURL and
// any format other than FormatXML negotiates JSON.
func NewClient(baseURL, format string, t *mailbox.Transport) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if format != FormatXML {
		format = FormatJSON
	}
	if t == nil {
		t = mailbox.NewTransport(mailbox.TransportConfig{}, nil)
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		format:    format,
		transport: t,
		now:       time.Now,
	}
}

// Name implements mailbox.Provider.
func (c *Client) Name() string { return Name }

// Format returns the negotiated response format.
func (c *Client) Format() string { return c.format }

// Domains returns the active mail domains.
func (c *Client) Domains(ctx context.Context) ([]string, error) {
	resp, err := c.do(ctx, http.MethodGet, "/domains", "", nil)
	if err != nil {
		return nil, mailbox.Wrap(Name, "list domains", err)
	}

	domains, err := decodeDomains(resp)
	if err != nil {
		return nil, mailbox.Wrap(Name, "list domains", err)
	}

	var active []string
	for _, d := range domains {
		if d.active() && d.Domain != "" {
			active = append(active, d.Domain)
		}
	}
	return active, nil
}

// Provision discovers a domain, creates an account with random credentials
// and exchanges them for a bearer token. Any failed step fails the whole
// provisioning; no partial mailbox is returned.
func (c *Client) Provision(ctx context.Context) (mailbox.Mailbox, error) {
	domains, err := c.Domains(ctx)
	if err != nil {
		return mailbox.Mailbox{}, err
	}
	if len(domains) == 0 {
		return mailbox.Mailbox{}, mailbox.Wrap(Name, "provision", mailbox.ErrNoDomains)
	}

	login := randString(lowerAlnum, localPartLen)
	domain := domains[0]
	address := login + "@" + domain
	password := randString(alnum, passwordLen)

	creds := credentials{Address: address, Password: password}

	resp, err := c.do(ctx, http.MethodPost, "/accounts", "", creds)
	if err != nil {
		return mailbox.Mailbox{}, mailbox.Wrap(Name, "create account", err)
	}
	acct, err := decodeAccount(resp)
	if err != nil {
		return mailbox.Mailbox{}, mailbox.Wrap(Name, "create account", err)
	}

	resp, err = c.do(ctx, http.MethodPost, "/token", "", creds)
	if err != nil {
		return mailbox.Mailbox{}, mailbox.Wrap(Name, "request token", err)
	}
	tok, err := decodeToken(resp)
	if err != nil {
		return mailbox.Mailbox{}, mailbox.Wrap(Name, "request token", err)
	}
	if tok.Token == "" {
		return mailbox.Mailbox{}, mailbox.Wrap(Name, "request token",
			fmt.Errorf("%w: missing token", mailbox.ErrMalformed))
	}

	accountID := acct.ID
	if accountID == "" {
		accountID = tok.ID
	}

	return mailbox.Mailbox{
		ID:        uuid.NewString(),
		Backend:   Name,
		Address:   address,
		Login:     login,
		Domain:    domain,
		AccountID: accountID,
		Password:  password,
		Token:     tok.Token,
		CreatedAt: c.now(),
	}, nil
}

// ListMessages returns the inbox summaries. Each summary already carries an
// intro, so no per-message request is made.
func (c *Client) ListMessages(ctx context.Context, mb mailbox.Mailbox) ([]mailbox.Summary, error) {
	if mb.Token == "" {
		return nil, mailbox.Wrap(Name, "list messages", mailbox.ErrNoToken)
	}

	resp, err := c.do(ctx, http.MethodGet, "/messages", mb.Token, nil)
	if err != nil {
		return nil, mailbox.Wrap(Name, "list messages", err)
	}

	recs, err := decodeMessages(resp)
	if err != nil {
		return nil, mailbox.Wrap(Name, "list messages", err)
	}

	summaries := make([]mailbox.Summary, len(recs))
	for i, r := range recs {
		summaries[i] = r.summary()
	}
	return summaries, nil
}

// FetchMessage downloads the raw message source and extracts its body.
func (c *Client) FetchMessage(ctx context.Context, mb mailbox.Mailbox, id string) (mailbox.Message, error) {
	if mb.Token == "" {
		return mailbox.Message{}, mailbox.Wrap(Name, "fetch message", mailbox.ErrNoToken)
	}

	resp, err := c.do(ctx, http.MethodGet, "/messages/"+url.PathEscape(id)+"/download", mb.Token, nil)
	if err != nil {
		return mailbox.Message{}, mailbox.Wrap(Name, "fetch message", err)
	}

	msg, err := parseMessage(bytes.NewReader(resp.Body))
	if err != nil {
		return mailbox.Message{}, mailbox.Wrap(Name, "fetch message", err)
	}
	msg.ID = id
	return msg, nil
}

// Discard deletes the remote account.
func (c *Client) Discard(ctx context.Context, mb mailbox.Mailbox) error {
	if mb.Token == "" {
		return mailbox.Wrap(Name, "delete account", mailbox.ErrNoToken)
	}
	if mb.AccountID == "" {
		return mailbox.Wrap(Name, "delete account",
			fmt.Errorf("%w: missing account id", mailbox.ErrMalformed))
	}

	if _, err := c.do(ctx, http.MethodDelete, "/accounts/"+url.PathEscape(mb.AccountID), mb.Token, nil); err != nil {
		return mailbox.Wrap(Name, "delete account", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path, token string, payload any) (*mailbox.Response, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", c.accept())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return c.transport.Do(req)
}

func (c *Client) accept() string {
	if c.format == FormatXML {
		return "application/xml"
	}
	return "application/ld+json, application/json;q=0.9"
}

type credentials struct {
	Address  string `json:"address"`
	Password string `json:"password"`
}

// randString returns n characters drawn uniformly from charset.
func randString(charset string, n int) string {
	limit := big.NewInt(int64(len(charset)))
	b := make([]byte, n)
	for i := range b {
		v, err := rand.Int(rand.Reader, limit)
		if err != nil {
			// crypto/rand failure is unrecoverable
			panic("crypto/rand: " + err.Error())
		}
		b[i] = charset[v.Int64()]
	}
	return string(b)
}

// Package mailbox defines the disposable-mailbox capability shared by every
// temporary-mail backend: provision an address, list its messages, fetch one.
package mailbox

import (
	"context"
	"time"
)

// Mailbox is a provisioned inbox. Token and Password are credentials for
// account-based backends and stay empty for stateless ones.
type Mailbox struct {
	ID        string    `json:"id"`
	Backend   string    `json:"backend"`
	Address   string    `json:"address"`
	Login     string    `json:"login"`
	Domain    string    `json:"domain"`
	AccountID string    `json:"account_id,omitempty"`
	Password  string    `json:"password,omitempty"`
	Token     string    `json:"token,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Summary is a normalized inbox listing entry.
type Summary struct {
	ID      string    `json:"id"`
	From    string    `json:"from"`
	Subject string    `json:"subject"`
	Date    time.Time `json:"date"`
	Preview string    `json:"preview"`
}

// Message is a fully fetched message. Body holds HTML when HTML is true;
// plain-text bodies are escaped and wrapped in <pre> so Body is always HTML.
type Message struct {
	Summary
	Body string `json:"body"`
	HTML bool   `json:"html"`
}

// Provider is implemented by each temporary-mail backend.
type Provider interface {
	// Name identifies the backend in logs and errors.
	Name() string
	Provision(ctx context.Context) (Mailbox, error)
	// ListMessages returns summaries in provider order.
	ListMessages(ctx context.Context, mb Mailbox) ([]Summary, error)
	FetchMessage(ctx context.Context, mb Mailbox, id string) (Message, error)
}

// Discarder is implemented by backends that can delete a provisioned
// mailbox on the remote side.
type Discarder interface {
	Discard(ctx context.Context, mb Mailbox) error
}

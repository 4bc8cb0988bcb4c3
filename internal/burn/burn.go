// Package burn implements best-effort discarding of provisioned mailboxes.
package burn

import (
	"context"
	"fmt"
	"strings"

	"github.com/zarlcorp/zprofile/internal/mailbox"
)

// MailboxStore deletes locally held mailboxes.
type MailboxStore interface {
	Delete(id string) error
}

// InboxCache holds previously fetched message summaries per mailbox.
type InboxCache interface {
	Cached(mailboxID string) int
	Forget(mailboxID string) error
}

// Request describes what to burn.
type Request struct {
	Mailbox   mailbox.Mailbox
	Mailboxes MailboxStore
	Cache     InboxCache        // nil if nothing is cached
	Discarder mailbox.Discarder // nil if the backend keeps no remote account
}

// StepStatus records the outcome of one cascade step.
type StepStatus struct {
	Description string
	Err         error
}

// Result summarizes a completed burn.
type Result struct {
	Address       string
	MessagesCount int
	Steps         []StepStatus
}

// HasErrors returns true if any step failed.
func (r Result) HasErrors() bool {
	for _, s := range r.Steps {
		if s.Err != nil {
			return true
		}
	}
	return false
}

// Summary returns a human-readable summary of the burn result.
func (r Result) Summary() string {
	var b strings.Builder

	if r.HasErrors() {
		fmt.Fprintf(&b, "burned %s (with errors)", r.Address)
	} else {
		fmt.Fprintf(&b, "burned %s", r.Address)
	}

	for _, s := range r.Steps {
		if s.Err != nil {
			fmt.Fprintf(&b, "\n- %s: %v", s.Description, s.Err)
		} else {
			fmt.Fprintf(&b, "\n- %s", s.Description)
		}
	}

	return b.String()
}

// Plan returns a list of human-readable descriptions of what will happen.
// Used to populate the confirmation dialog.
func Plan(req Request) []string {
	var steps []string

	if remote(req) {
		steps = append(steps, fmt.Sprintf("delete %s account %s", req.Mailbox.Backend, req.Mailbox.Address))
	}

	if req.Cache != nil {
		steps = append(steps, fmt.Sprintf("forget cached messages (%d)", req.Cache.Cached(req.Mailbox.ID)))
	}

	steps = append(steps, "erase mailbox address and token")

	return steps
}

// Execute runs the burn cascade. It is best-effort: each step is attempted
// regardless of whether previous steps failed. The local mailbox record is
// always deleted last.
func Execute(ctx context.Context, req Request) Result {
	result := Result{Address: req.Mailbox.Address}

	// 1. delete the remote account
	if remote(req) {
		result.discard(ctx, req)
	}

	// 2. drop cached summaries
	if req.Cache != nil {
		result.forget(req)
	}

	// 3. delete the mailbox
	result.deleteMailbox(req)

	return result
}

// remote reports whether the backend holds an account worth deleting.
func remote(req Request) bool {
	return req.Discarder != nil && req.Mailbox.Token != ""
}

func (r *Result) discard(ctx context.Context, req Request) {
	err := req.Discarder.Discard(ctx, req.Mailbox)
	if err != nil {
		r.Steps = append(r.Steps, StepStatus{
			Description: fmt.Sprintf("remote account deletion for %s", req.Mailbox.Address),
			Err:         err,
		})
		return
	}
	r.Steps = append(r.Steps, StepStatus{
		Description: fmt.Sprintf("deleted remote account %s", req.Mailbox.Address),
	})
}

func (r *Result) forget(req Request) {
	n := req.Cache.Cached(req.Mailbox.ID)
	if err := req.Cache.Forget(req.Mailbox.ID); err != nil {
		r.Steps = append(r.Steps, StepStatus{
			Description: "forget cached messages",
			Err:         err,
		})
		return
	}
	r.MessagesCount = n
	r.Steps = append(r.Steps, StepStatus{
		Description: fmt.Sprintf("forgot %d cached messages", n),
	})
}

func (r *Result) deleteMailbox(req Request) {
	err := req.Mailboxes.Delete(req.Mailbox.ID)
	if err != nil {
		r.Steps = append(r.Steps, StepStatus{
			Description: "delete mailbox",
			Err:         err,
		})
		return
	}
	r.Steps = append(r.Steps, StepStatus{
		Description: "deleted mailbox",
	})
}

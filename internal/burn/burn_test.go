package burn

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/zarlcorp/zprofile/internal/mailbox"
)

// fakes

type fakeMailboxStore struct {
	deleted []string
	delErr  error
}

func (f *fakeMailboxStore) Delete(id string) error {
	if f.delErr != nil {
		return f.delErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeCache struct {
	counts    map[string]int
	forgotten []string
	err       error
}

func (f *fakeCache) Cached(id string) int { return f.counts[id] }

func (f *fakeCache) Forget(id string) error {
	if f.err != nil {
		return f.err
	}
	f.forgotten = append(f.forgotten, id)
	delete(f.counts, id)
	return nil
}

type fakeDiscarder struct {
	calls []string
	err   error
}

func (f *fakeDiscarder) Discard(_ context.Context, mb mailbox.Mailbox) error {
	f.calls = append(f.calls, mb.AccountID)
	return f.err
}

// helpers

func testMailbox() mailbox.Mailbox {
	return mailbox.Mailbox{
		ID:        "mb-001",
		Backend:   "mailtm",
		Address:   "k3j9q2x8m1p0@example.org",
		AccountID: "acct-001",
		Token:     "tok",
		CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// tests

func TestExecuteFullCascade(t *testing.T) {
	ms := &fakeMailboxStore{}
	cache := &fakeCache{counts: map[string]int{"mb-001": 3}}
	d := &fakeDiscarder{}

	req := Request{
		Mailbox:   testMailbox(),
		Mailboxes: ms,
		Cache:     cache,
		Discarder: d,
	}

	result := Execute(context.Background(), req)

	if result.HasErrors() {
		t.Errorf("unexpected errors: %s", result.Summary())
	}

	if result.MessagesCount != 3 {
		t.Errorf("messages forgotten = %d, want 3", result.MessagesCount)
	}

	if len(d.calls) != 1 || d.calls[0] != "acct-001" {
		t.Errorf("discard calls = %v, want [acct-001]", d.calls)
	}

	if len(ms.deleted) != 1 || ms.deleted[0] != "mb-001" {
		t.Errorf("mailbox deletes = %v, want [mb-001]", ms.deleted)
	}

	if len(result.Steps) != 3 {
		t.Errorf("steps = %d, want 3", len(result.Steps))
	}
}

func TestExecuteStatelessMailbox(t *testing.T) {
	ms := &fakeMailboxStore{}
	d := &fakeDiscarder{}

	mb := testMailbox()
	mb.Backend = "secmail"
	mb.Token = ""

	result := Execute(context.Background(), Request{Mailbox: mb, Mailboxes: ms, Discarder: d})

	if result.HasErrors() {
		t.Errorf("unexpected errors: %s", result.Summary())
	}

	// no token, nothing remote to delete
	if len(d.calls) != 0 {
		t.Errorf("discard calls = %v, want none", d.calls)
	}

	if len(result.Steps) != 1 {
		t.Errorf("steps = %d, want 1", len(result.Steps))
	}
}

func TestExecuteDiscardFailureContinues(t *testing.T) {
	ms := &fakeMailboxStore{}
	d := &fakeDiscarder{err: fmt.Errorf("mailtm api error")}

	result := Execute(context.Background(), Request{
		Mailbox:   testMailbox(),
		Mailboxes: ms,
		Discarder: d,
	})

	if !result.HasErrors() {
		t.Error("should have errors when remote deletion fails")
	}

	// mailbox should still be deleted
	if len(ms.deleted) != 1 {
		t.Errorf("mailbox deletes = %d, want 1", len(ms.deleted))
	}

	if !strings.Contains(result.Summary(), "mailtm api error") {
		t.Errorf("summary should contain error: %s", result.Summary())
	}
}

func TestExecuteCacheError(t *testing.T) {
	ms := &fakeMailboxStore{}
	cache := &fakeCache{counts: map[string]int{"mb-001": 2}, err: fmt.Errorf("cache locked")}

	result := Execute(context.Background(), Request{
		Mailbox:   testMailbox(),
		Mailboxes: ms,
		Cache:     cache,
	})

	if !result.HasErrors() {
		t.Error("should have errors when the cache cannot be cleared")
	}
	if result.MessagesCount != 0 {
		t.Errorf("messages forgotten = %d, want 0", result.MessagesCount)
	}
	if len(ms.deleted) != 1 {
		t.Errorf("mailbox deletes = %d, want 1", len(ms.deleted))
	}
}

func TestExecuteMailboxDeleteError(t *testing.T) {
	ms := &fakeMailboxStore{delErr: fmt.Errorf("permission denied")}

	result := Execute(context.Background(), Request{Mailbox: testMailbox(), Mailboxes: ms})

	if !result.HasErrors() {
		t.Error("should have errors when mailbox delete fails")
	}

	if !strings.Contains(result.Summary(), "permission denied") {
		t.Errorf("summary should mention error: %s", result.Summary())
	}
}

func TestExecuteAllFailures(t *testing.T) {
	ms := &fakeMailboxStore{delErr: fmt.Errorf("store error")}
	cache := &fakeCache{err: fmt.Errorf("cache error")}
	d := &fakeDiscarder{err: fmt.Errorf("remote error")}

	result := Execute(context.Background(), Request{
		Mailbox:   testMailbox(),
		Mailboxes: ms,
		Cache:     cache,
		Discarder: d,
	})

	// all 3 steps should be attempted
	if len(result.Steps) != 3 {
		t.Errorf("steps = %d, want 3", len(result.Steps))
	}

	for i, s := range result.Steps {
		if s.Err == nil {
			t.Errorf("step %d (%s) should have error", i, s.Description)
		}
	}

	if !strings.Contains(result.Summary(), "with errors") {
		t.Errorf("summary should say 'with errors': %s", result.Summary())
	}
}

func TestPlanFull(t *testing.T) {
	req := Request{
		Mailbox:   testMailbox(),
		Mailboxes: &fakeMailboxStore{},
		Cache:     &fakeCache{counts: map[string]int{"mb-001": 4}},
		Discarder: &fakeDiscarder{},
	}

	steps := Plan(req)

	if len(steps) != 3 {
		t.Fatalf("plan steps = %d, want 3", len(steps))
	}

	if !strings.Contains(steps[0], "k3j9q2x8m1p0@example.org") {
		t.Errorf("step 0 = %q, want address", steps[0])
	}

	if !strings.Contains(steps[1], "(4)") {
		t.Errorf("step 1 = %q, want message count", steps[1])
	}
}

func TestPlanLocalOnly(t *testing.T) {
	steps := Plan(Request{Mailbox: testMailbox(), Mailboxes: &fakeMailboxStore{}})

	if len(steps) != 1 {
		t.Fatalf("plan steps = %d, want 1", len(steps))
	}

	if !strings.Contains(steps[0], "erase") {
		t.Errorf("step 0 = %q, want erase", steps[0])
	}
}

func TestResultSummaryNoErrors(t *testing.T) {
	r := Result{
		Address: "a@example.org",
		Steps: []StepStatus{
			{Description: "deleted remote account a@example.org"},
			{Description: "deleted mailbox"},
		},
	}

	s := r.Summary()
	if strings.Contains(s, "with errors") {
		t.Errorf("summary should not say 'with errors': %s", s)
	}
	if !strings.Contains(s, "burned a@example.org") {
		t.Errorf("summary should contain address: %s", s)
	}
}

func TestResultSummaryWithErrors(t *testing.T) {
	r := Result{
		Address: "a@example.org",
		Steps: []StepStatus{
			{Description: "remote account deletion", Err: fmt.Errorf("timeout")},
			{Description: "deleted mailbox"},
		},
	}

	s := r.Summary()
	if !strings.Contains(s, "with errors") {
		t.Errorf("summary should say 'with errors': %s", s)
	}
	if !strings.Contains(s, "timeout") {
		t.Errorf("summary should contain the error: %s", s)
	}
}

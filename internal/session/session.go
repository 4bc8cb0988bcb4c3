// Package session owns the state of one interactive run: the IBAN allocator,
// the last generated batch and every mailbox provisioned so far. Nothing
// outlives the session; the backing store is in memory and encrypted with a
// throwaway key.
package session

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/zarlcorp/core/pkg/zcrypto"
	"github.com/zarlcorp/core/pkg/zfilesystem"
	"github.com/zarlcorp/core/pkg/zstore"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/zarlcorp/zprofile/internal/burn"
	"github.com/zarlcorp/zprofile/internal/iban"
	"github.com/zarlcorp/zprofile/internal/identity"
	"github.com/zarlcorp/zprofile/internal/mailbox"
	"github.com/zarlcorp/zprofile/internal/profile"
)

var (
	// ErrUnknownMailbox is returned for mailbox ids this session never issued.
	ErrUnknownMailbox = errors.New("unknown mailbox")

	// ErrUnknownProfile is returned for profile ids not in the last batch.
	ErrUnknownProfile = errors.New("unknown profile")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("session closed")
)

// Session is safe for concurrent use.
type Session struct {
	provider mailbox.Provider
	ibans    *iban.Allocator
	ids      *identity.Generator
	log      *zap.Logger

	store     *zstore.Store
	profiles  *zstore.Collection[profile.Profile]
	mailboxes *zstore.Collection[mailbox.Mailbox]

	group singleflight.Group

	mu     sync.Mutex
	last   profile.Batch
	order  []string // mailbox ids in provisioning order
	inbox  map[string][]mailbox.Summary
	closed bool

	genMu sync.Mutex // serializes Generate
}

// New starts a session. provider may be nil, in which case Email cannot be
// generated.
func New(provider mailbox.Provider, log *zap.Logger) (*Session, error) {
	if log == nil {
		log = zap.NewNop()
	}

	key, err := zcrypto.RandBytes(32)
	if err != nil {
		return nil, fmt.Errorf("session key: %w", err)
	}
	pass := []byte(hex.EncodeToString(key))
	zcrypto.Erase(key)

	s, err := zstore.Open(zfilesystem.NewMemFS(), pass)
	zcrypto.Erase(pass)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	profiles, err := zstore.NewCollection[profile.Profile](s, "profiles")
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("profiles collection: %w", err)
	}

	mailboxes, err := zstore.NewCollection[mailbox.Mailbox](s, "mailboxes")
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("mailboxes collection: %w", err)
	}

	return &Session{
		provider:  provider,
		ibans:     iban.New(),
		ids:       identity.New(),
		log:       log,
		store:     s,
		profiles:  profiles,
		mailboxes: mailboxes,
		inbox:     make(map[string][]mailbox.Summary),
	}, nil
}

// Provider returns the configured backend name, or "" when none is set.
func (s *Session) Provider() string {
	if s.provider == nil {
		return ""
	}
	return s.provider.Name()
}

// NextIBAN allocates one IBAN for country code.
func (s *Session) NextIBAN(code string) string {
	return s.ibans.Next(code)
}

// Generate builds a batch, replacing the previous one. Provisioned mailboxes
// accumulate across batches. progress may be nil.
func (s *Session) Generate(ctx context.Context, opts profile.Options, progress func(done, total int)) (profile.Batch, error) {
	s.genMu.Lock()
	defer s.genMu.Unlock()

	if s.isClosed() {
		return profile.Batch{}, ErrClosed
	}

	var prov profile.Provisioner
	if s.provider != nil {
		prov = s.provider
	}
	gen := profile.NewGenerator(s.ids, s.ibans, prov, s.log)
	gen.OnProgress = progress

	b, err := gen.Generate(ctx, opts)
	if err != nil && len(b.Profiles) == 0 {
		return b, err
	}

	if serr := s.replace(b); serr != nil {
		return b, serr
	}
	return b, err
}

func (s *Session) replace(b profile.Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.last.Profiles {
		if err := s.profiles.Delete(p.ID); err != nil {
			return fmt.Errorf("drop profile %s: %w", p.ID, err)
		}
	}
	for _, p := range b.Profiles {
		if err := s.profiles.Put(p.ID, p); err != nil {
			return fmt.Errorf("store profile %s: %w", p.ID, err)
		}
	}
	for _, mb := range b.Mailboxes {
		if err := s.mailboxes.Put(mb.ID, mb); err != nil {
			return fmt.Errorf("store mailbox %s: %w", mb.Address, err)
		}
		s.order = append(s.order, mb.ID)
	}

	s.last = b
	return nil
}

// Last returns the most recent batch.
func (s *Session) Last() profile.Batch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Profile returns a profile of the last batch.
func (s *Session) Profile(id string) (profile.Profile, error) {
	p, err := s.profiles.Get(id)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("%w: %s", ErrUnknownProfile, id)
	}
	return p, nil
}

// Mailboxes returns every live mailbox in provisioning order.
func (s *Session) Mailboxes() ([]mailbox.Mailbox, error) {
	s.mu.Lock()
	order := slices.Clone(s.order)
	s.mu.Unlock()

	out := make([]mailbox.Mailbox, 0, len(order))
	for _, id := range order {
		mb, err := s.mailboxes.Get(id)
		if err != nil {
			return nil, fmt.Errorf("load mailbox %s: %w", id, err)
		}
		out = append(out, mb)
	}
	return out, nil
}

// Mailbox returns one mailbox by session id.
func (s *Session) Mailbox(id string) (mailbox.Mailbox, error) {
	s.mu.Lock()
	known := slices.Contains(s.order, id)
	s.mu.Unlock()
	if !known {
		return mailbox.Mailbox{}, fmt.Errorf("%w: %s", ErrUnknownMailbox, id)
	}

	mb, err := s.mailboxes.Get(id)
	if err != nil {
		return mailbox.Mailbox{}, fmt.Errorf("load mailbox %s: %w", id, err)
	}
	return mb, nil
}

// Inbox fetches the current summaries for a mailbox. Concurrent refreshes of
// the same mailbox share one request. A failed refresh leaves the cached
// listing untouched.
func (s *Session) Inbox(ctx context.Context, id string) ([]mailbox.Summary, error) {
	mb, err := s.Mailbox(id)
	if err != nil {
		return nil, err
	}
	p, err := s.providerFor(mb)
	if err != nil {
		return nil, err
	}

	v, err, _ := s.group.Do(id, func() (any, error) {
		return p.ListMessages(ctx, mb)
	})
	if err != nil {
		s.log.Warn("refresh inbox", zap.String("mailbox", mb.Address), zap.Error(err))
		return nil, err
	}

	msgs := v.([]mailbox.Summary)

	s.mu.Lock()
	s.inbox[id] = msgs
	s.mu.Unlock()

	return slices.Clone(msgs), nil
}

// CachedInbox returns the summaries from the last successful refresh.
func (s *Session) CachedInbox(id string) []mailbox.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.inbox[id])
}

// Read fetches one full message.
func (s *Session) Read(ctx context.Context, id, msgID string) (mailbox.Message, error) {
	mb, err := s.Mailbox(id)
	if err != nil {
		return mailbox.Message{}, err
	}
	p, err := s.providerFor(mb)
	if err != nil {
		return mailbox.Message{}, err
	}
	return p.FetchMessage(ctx, mb, msgID)
}

// BurnPlan describes what Burn would do for a mailbox.
func (s *Session) BurnPlan(id string) ([]string, error) {
	req, err := s.burnRequest(id)
	if err != nil {
		return nil, err
	}
	return burn.Plan(req), nil
}

// Burn discards a mailbox: the remote account when the backend supports it,
// then the cached inbox and the stored credentials.
func (s *Session) Burn(ctx context.Context, id string) (burn.Result, error) {
	req, err := s.burnRequest(id)
	if err != nil {
		return burn.Result{}, err
	}

	res := burn.Execute(ctx, req)

	s.mu.Lock()
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
	s.mu.Unlock()

	s.log.Info("burned mailbox",
		zap.String("mailbox", req.Mailbox.Address),
		zap.Bool("errors", res.HasErrors()),
	)
	return res, nil
}

func (s *Session) burnRequest(id string) (burn.Request, error) {
	mb, err := s.Mailbox(id)
	if err != nil {
		return burn.Request{}, err
	}

	req := burn.Request{
		Mailbox:   mb,
		Mailboxes: s.mailboxes,
		Cache:     s,
	}
	if p, err := s.providerFor(mb); err == nil {
		if d, ok := p.(mailbox.Discarder); ok {
			req.Discarder = d
		}
	}
	return req, nil
}

// Cached implements burn.InboxCache.
func (s *Session) Cached(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inbox[id])
}

// Forget implements burn.InboxCache.
func (s *Session) Forget(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inbox, id)
	return nil
}

func (s *Session) providerFor(mb mailbox.Mailbox) (mailbox.Provider, error) {
	if s.provider == nil || s.provider.Name() != mb.Backend {
		return nil, fmt.Errorf("mailbox %s: no %q backend in this session", mb.Address, mb.Backend)
	}
	return s.provider, nil
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close erases all session data. Remote accounts are left to expire.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	for _, p := range s.last.Profiles {
		if err := s.profiles.Delete(p.ID); err != nil {
			errs = append(errs, err)
		}
	}
	for _, id := range s.order {
		if err := s.mailboxes.Delete(id); err != nil {
			errs = append(errs, err)
		}
	}

	s.last = profile.Batch{}
	s.order = nil
	clear(s.inbox)
	s.ibans.Reset()
	s.store.Close()

	return errors.Join(errs...)
}

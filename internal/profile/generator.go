package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/zarlcorp/zprofile/internal/identity"
	"github.com/zarlcorp/zprofile/internal/mailbox"
)

// IBANSource hands out IBANs by country code.
type IBANSource interface {
	Next(code string) string
}

// Provisioner creates mailboxes. mailbox.Provider satisfies it.
type Provisioner interface {
	Provision(ctx context.Context) (mailbox.Mailbox, error)
}

// Generator builds batches of profiles.
type Generator struct {
	ids   *identity.Generator
	ibans IBANSource
	mail  Provisioner
	log   *zap.Logger
	now   func() time.Time

	// OnProgress, when set, is called after each profile with the number done
	// and the batch size.
	OnProgress func(done, total int)
}

// NewGenerator creates a generator. mail may be nil, in which case Email is
// reported unavailable for every profile.
func NewGenerator(ids *identity.Generator, ibans IBANSource, mail Provisioner, log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{
		ids:   ids,
		ibans: ibans,
		mail:  mail,
		log:   log,
		now:   time.Now,
	}
}

// Generate builds opts.Count profiles. A mailbox is provisioned per profile
// only when Email is selected. Per-profile failures become notices; only
// invalid options or cancellation return an error, the latter together with
// the profiles built so far.
func (g *Generator) Generate(ctx context.Context, opts Options) (Batch, error) {
	if err := opts.Validate(); err != nil {
		return Batch{}, fmt.Errorf("generate: %w", err)
	}

	b := Batch{
		Country:   opts.Country,
		Fields:    opts.Fields(),
		CreatedAt: g.now(),
	}

	for i := range opts.Count {
		if err := ctx.Err(); err != nil {
			return b, fmt.Errorf("generate: %w", err)
		}

		p, mb, notices, err := g.one(ctx, i, opts)
		if err != nil {
			// the country was validated, so this is a missing locale table
			return b, fmt.Errorf("generate profile %d: %w", i+1, err)
		}

		b.Profiles = append(b.Profiles, p)
		if mb != nil {
			b.Mailboxes = append(b.Mailboxes, *mb)
		}
		b.Notices = append(b.Notices, notices...)

		if g.OnProgress != nil {
			g.OnProgress(i+1, opts.Count)
		}
	}

	g.log.Info("batch generated",
		zap.String("country", string(opts.Country)),
		zap.Int("profiles", len(b.Profiles)),
		zap.Int("mailboxes", len(b.Mailboxes)),
		zap.Int("notices", len(b.Notices)),
	)

	return b, nil
}

func (g *Generator) one(ctx context.Context, i int, opts Options) (Profile, *mailbox.Mailbox, []Notice, error) {
	id, err := g.ids.Generate(opts.Country)
	if err != nil {
		if errors.Is(err, identity.ErrUnsupportedCountry) {
			err = fmt.Errorf("%w: %w", ErrUnsupportedCountry, err)
		}
		return Profile{}, nil, nil, err
	}

	p := Profile{ID: id.ID, Country: opts.Country}
	p.set(Name, id.FirstName)
	p.set(Surname, id.LastName)
	p.set(BirthDate, id.BirthDate())
	p.set(Address, id.Address())
	p.set(IBAN, g.ibans.Next(string(opts.Country)))
	p.set(Country, opts.Country.Name())

	var (
		mb      *mailbox.Mailbox
		notices []Notice
	)

	if opts.Has(Email) {
		addr, provisioned, n := g.email(ctx, i)
		p.set(Email, addr)
		if provisioned != nil {
			mb = provisioned
			p.MailboxID = provisioned.ID
		}
		if n != nil {
			notices = append(notices, *n)
		}
	}
	if opts.Has(Phone) {
		p.set(Phone, id.Phone)
	}
	if opts.Has(TaxID) {
		v, ok := g.ids.TaxID(id)
		if !ok {
			v = TaxIDUnavailable
		}
		p.set(TaxID, v)
	}
	if opts.Has(VatID) {
		v, ok := g.ids.VATID(opts.Country)
		if !ok {
			v = VatIDUnavailable
		}
		p.set(VatID, v)
	}

	return p, mb, notices, nil
}

// email provisions one mailbox. Failure yields an empty address and a notice.
func (g *Generator) email(ctx context.Context, i int) (string, *mailbox.Mailbox, *Notice) {
	if g.mail == nil {
		return "", nil, &Notice{Index: i, Field: Email, Message: "no mail provider configured"}
	}

	mb, err := g.mail.Provision(ctx)
	if err != nil {
		g.log.Warn("provision mailbox", zap.Int("profile", i+1), zap.Error(err))
		return "", nil, &Notice{
			Index:     i,
			Field:     Email,
			Message:   mailbox.Describe(err),
			Forbidden: errors.Is(err, mailbox.ErrForbidden),
		}
	}

	return mb.Address, &mb, nil
}

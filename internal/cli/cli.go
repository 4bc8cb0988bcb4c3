// Package cli implements zprofile's command-line subcommands.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/zarlcorp/zprofile/internal/codes"
	"github.com/zarlcorp/zprofile/internal/config"
	"github.com/zarlcorp/zprofile/internal/country"
	"github.com/zarlcorp/zprofile/internal/mailbox"
	"github.com/zarlcorp/zprofile/internal/profile"
	"github.com/zarlcorp/zprofile/internal/session"
)

// ErrUsage is returned for malformed command lines.
var ErrUsage = errors.New("usage")

// Env is what commands run against.
type Env struct {
	Config   *config.Config
	Provider mailbox.Provider
	Log      *zap.Logger
	Stdout   io.Writer
	Stderr   io.Writer
	// Terminal reports whether Stdout is interactive. Generated profiles are
	// printed as blocks on a terminal and as CSV otherwise.
	Terminal bool
}

// Commands lists the subcommands for usage output.
var Commands = []struct{ Name, Desc string }{
	{"generate", "generate profiles (-c country, -n count, -f email,phone,taxid,vatid, --csv, --json)"},
	{"iban", "allocate IBANs without repeats (-c country, -n count)"},
	{"countries", "list supported countries"},
	{"inbox", "list messages of a stateless mailbox: inbox <address>"},
	{"read", "print one message and its verification code: read <address> <id>"},
	{"version", "print version"},
}

// Usage writes the command summary.
func Usage(w io.Writer) {
	fmt.Fprintln(w, "usage: zprofile [command] [flags]")
	fmt.Fprintln(w, "\nwithout a command zprofile starts the interactive interface.")
	fmt.Fprintln(w, "\ncommands:")
	for _, c := range Commands {
		fmt.Fprintf(w, "  %-10s %s\n", c.Name, c.Desc)
	}
}

// Run dispatches one subcommand.
func Run(ctx context.Context, env Env, args []string) error {
	if len(args) == 0 {
		Usage(env.Stderr)
		return ErrUsage
	}

	switch args[0] {
	case "generate", "gen":
		return CmdGenerate(ctx, env, args[1:])
	case "iban":
		return CmdIBAN(env, args[1:])
	case "countries":
		return CmdCountries(env)
	case "inbox":
		return CmdInbox(ctx, env, args[1:])
	case "read":
		return CmdRead(ctx, env, args[1:])
	case "help", "-h", "--help":
		Usage(env.Stdout)
		return nil
	default:
		Usage(env.Stderr)
		return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}
}

func newFlagSet(env Env, name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	return fs
}

// parse returns done=true when help was requested.
func parse(fs *pflag.FlagSet, args []string) (done bool, err error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return true, nil
		}
		return false, fmt.Errorf("%w: %w", ErrUsage, err)
	}
	return false, nil
}

// CmdGenerate generates a batch and prints or exports it.
func CmdGenerate(ctx context.Context, env Env, args []string) error {
	fs := newFlagSet(env, "generate")
	countryFlag := fs.StringP("country", "c", string(env.Config.Defaults.Country), "country code or name (IT, FR, DE, LU)")
	count := fs.IntP("count", "n", env.Config.Defaults.Count, "number of profiles (1-50)")
	fields := fs.StringP("fields", "f", "", "optional fields: email,phone,taxid,vatid")
	csvOut := fs.String("csv", "", `write CSV to file; "auto" uses the export dir, "-" stdout`)
	asJSON := fs.Bool("json", false, "print JSON")
	if done, err := parse(fs, args); done || err != nil {
		return err
	}

	code, err := country.Parse(*countryFlag)
	if err != nil {
		return fmt.Errorf("%w: %q", profile.ErrUnsupportedCountry, *countryFlag)
	}
	extras, err := profile.ParseFields(*fields)
	if err != nil {
		return err
	}

	s, err := session.New(env.Provider, env.Log)
	if err != nil {
		return err
	}
	defer s.Close()

	opts := profile.Options{Country: code, Count: *count, Extras: extras}
	b, err := s.Generate(ctx, opts, func(done, total int) {
		if env.Terminal && opts.Has(profile.Email) {
			fmt.Fprintf(env.Stderr, "\rgenerated %d/%d", done, total)
			if done == total {
				fmt.Fprintln(env.Stderr)
			}
		}
	})
	if err != nil {
		return err
	}

	for _, n := range b.Notices {
		fmt.Fprintf(env.Stderr, "zprofile: %s\n", n)
	}

	switch {
	case *csvOut == "-":
		return profile.WriteCSV(env.Stdout, b)
	case *csvOut != "":
		path := *csvOut
		if path == "auto" {
			path = filepath.Join(env.Config.ExportDir, profile.ExportName(code))
		}
		if err := writeCSVFile(path, b); err != nil {
			return err
		}
		fmt.Fprintf(env.Stderr, "wrote %d profiles to %s\n", len(b.Profiles), path)
		return nil
	case *asJSON:
		return printJSON(env.Stdout, b)
	case !env.Terminal:
		return profile.WriteCSV(env.Stdout, b)
	}

	for i, p := range b.Profiles {
		if i > 0 {
			fmt.Fprintln(env.Stdout)
		}
		printProfile(env.Stdout, p)
	}
	return nil
}

func writeCSVFile(path string, b profile.Batch) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export: %w", err)
	}
	if err := profile.WriteCSV(f, b); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close export: %w", err)
	}
	return nil
}

// CmdIBAN prints IBANs from a fresh allocator.
func CmdIBAN(env Env, args []string) error {
	fs := newFlagSet(env, "iban")
	countryFlag := fs.StringP("country", "c", string(env.Config.Defaults.Country), "country code or name")
	count := fs.IntP("count", "n", 1, "number of IBANs")
	if done, err := parse(fs, args); done || err != nil {
		return err
	}
	if *count < 1 {
		return fmt.Errorf("%w: count must be positive", ErrUsage)
	}

	// unknown countries still print the sentinel
	code := strings.ToUpper(strings.TrimSpace(*countryFlag))
	if c, err := country.Parse(*countryFlag); err == nil {
		code = string(c)
	}

	s, err := session.New(nil, env.Log)
	if err != nil {
		return err
	}
	defer s.Close()

	for range *count {
		fmt.Fprintln(env.Stdout, s.NextIBAN(code))
	}
	return nil
}

// CmdCountries lists the supported countries.
func CmdCountries(env Env) error {
	for _, c := range country.All {
		fmt.Fprintf(env.Stdout, "  %-3s %-12s %s\n", c, c.Name(), c.Locale())
	}
	return nil
}

// CmdInbox lists the messages of a stateless mailbox.
func CmdInbox(ctx context.Context, env Env, args []string) error {
	fs := newFlagSet(env, "inbox")
	asJSON := fs.Bool("json", false, "print JSON")
	if done, err := parse(fs, args); done || err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: zprofile inbox <address>", ErrUsage)
	}

	mb, err := addressMailbox(env, fs.Arg(0))
	if err != nil {
		return err
	}

	msgs, err := env.Provider.ListMessages(ctx, mb)
	if err != nil {
		return describe(err)
	}

	if *asJSON {
		return printJSON(env.Stdout, msgs)
	}
	if len(msgs) == 0 {
		fmt.Fprintln(env.Stdout, "inbox is empty")
		return nil
	}
	for _, m := range msgs {
		fmt.Fprintf(env.Stdout, "  %-10s %-16s %-30s %s\n",
			m.ID,
			formatDate(m),
			truncate(m.From, 30),
			m.Subject,
		)
	}
	return nil
}

// CmdRead prints one message as text followed by the best code candidate.
func CmdRead(ctx context.Context, env Env, args []string) error {
	fs := newFlagSet(env, "read")
	raw := fs.Bool("html", false, "print the HTML body unchanged")
	if done, err := parse(fs, args); done || err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("%w: zprofile read <address> <id>", ErrUsage)
	}

	mb, err := addressMailbox(env, fs.Arg(0))
	if err != nil {
		return err
	}

	msg, err := env.Provider.FetchMessage(ctx, mb, fs.Arg(1))
	if err != nil {
		return describe(err)
	}

	fmt.Fprintf(env.Stdout, "  from:    %s\n", msg.From)
	fmt.Fprintf(env.Stdout, "  subject: %s\n", msg.Subject)
	fmt.Fprintf(env.Stdout, "  date:    %s\n", formatDate(msg.Summary))
	if c, ok := codes.Best(msg); ok {
		fmt.Fprintf(env.Stdout, "  code:    %s\n", c.Value)
	}
	fmt.Fprintln(env.Stdout)

	if *raw {
		fmt.Fprintln(env.Stdout, msg.Body)
	} else {
		fmt.Fprintln(env.Stdout, mailbox.PlainText(msg.Body))
	}
	return nil
}

// addressMailbox rebuilds a mailbox from its address. Only stateless
// backends can be read this way; account backends need the session token.
func addressMailbox(env Env, addr string) (mailbox.Mailbox, error) {
	if env.Provider == nil {
		return mailbox.Mailbox{}, errors.New("no mailbox provider configured")
	}
	if _, ok := env.Provider.(mailbox.Discarder); ok {
		return mailbox.Mailbox{}, fmt.Errorf("%s mailboxes need the token issued at creation; open them from the interactive session", env.Provider.Name())
	}

	login, domain, err := mailbox.SplitAddress(addr)
	if err != nil {
		return mailbox.Mailbox{}, err
	}
	return mailbox.Mailbox{
		Backend: env.Provider.Name(),
		Address: addr,
		Login:   login,
		Domain:  domain,
	}, nil
}

// describe swaps provider errors for their actionable hint when one exists.
func describe(err error) error {
	if h := mailbox.Hint(err); h != "" {
		return fmt.Errorf("%w\n%s", err, h)
	}
	return err
}

func printProfile(w io.Writer, p profile.Profile) {
	width := 0
	for _, v := range p.Values {
		width = max(width, len(v.Field))
	}
	fmt.Fprintf(w, "  %-*s  %s\n", width+1, "id:", p.ID)
	for _, v := range p.Values {
		val := v.Value
		if val == "" {
			val = "-"
		}
		fmt.Fprintf(w, "  %-*s  %s\n", width+1, strings.ToLower(string(v.Field))+":", val)
	}
}

func formatDate(s mailbox.Summary) string {
	if s.Date.IsZero() {
		return "-"
	}
	return s.Date.Local().Format("2006-01-02 15:04")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// ExitCode maps a command error to a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrUsage):
		return 2
	default:
		return 1
	}
}

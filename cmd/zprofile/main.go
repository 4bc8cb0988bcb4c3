package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/zarlcorp/core/pkg/zapp"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/zarlcorp/zprofile/internal/cli"
	"github.com/zarlcorp/zprofile/internal/config"
	"github.com/zarlcorp/zprofile/internal/logger"
	"github.com/zarlcorp/zprofile/internal/mailbox"
	"github.com/zarlcorp/zprofile/internal/profile"
	"github.com/zarlcorp/zprofile/internal/session"
	"github.com/zarlcorp/zprofile/internal/tui"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	app := zapp.New(zapp.WithName("zprofile"))

	ctx, cancel := zapp.SignalContext(context.Background())

	code := run(ctx, os.Args[1:])
	cancel()

	if err := app.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "zprofile: shutdown: %v\n", err)
		code = max(code, 1)
	}
	os.Exit(code)
}

func run(ctx context.Context, args []string) int {
	if len(args) > 0 && (args[0] == "version" || args[0] == "--version") {
		fmt.Printf("zprofile %s\n", version)
		return 0
	}

	cfg, err := config.Load(config.DataDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "zprofile: %v\n", err)
		return 1
	}

	log, closer, err := logger.New(logger.Config{Level: cfg.Log.Level, File: cfg.Log.File})
	if err != nil {
		fmt.Fprintf(os.Stderr, "zprofile: %v\n", err)
		return 1
	}
	defer closer.Close()
	defer log.Sync()

	log.Info("start",
		zap.String("version", version),
		zap.String("provider", cfg.Provider.Name),
		zap.Strings("args", args),
	)

	provider, err := session.NewProvider(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "zprofile: %v\n", err)
		return 1
	}

	if len(args) > 0 {
		return runCLI(ctx, cfg, provider, log, args)
	}

	if err := runTUI(ctx, cfg, provider, log); err != nil {
		log.Error("tui", zap.Error(err))
		fmt.Fprintf(os.Stderr, "zprofile: %v\n", err)
		return 1
	}
	return 0
}

func runCLI(ctx context.Context, cfg *config.Config, provider mailbox.Provider, log *zap.Logger, args []string) int {
	env := cli.Env{
		Config:   cfg,
		Provider: provider,
		Log:      log,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Terminal: term.IsTerminal(int(os.Stdout.Fd())),
	}

	err := cli.Run(ctx, env, args)
	if err != nil {
		log.Warn("command failed", zap.String("command", args[0]), zap.Error(err))
		fmt.Fprintf(os.Stderr, "zprofile: %v\n", err)
	}
	return cli.ExitCode(err)
}

func runTUI(ctx context.Context, cfg *config.Config, provider mailbox.Provider, log *zap.Logger) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("interactive mode needs a terminal; see zprofile help")
	}

	s, err := session.New(provider, log)
	if err != nil {
		return err
	}
	defer s.Close()

	m := tui.New(ctx, version, s, tui.Config{
		Defaults: profile.Options{
			Country: cfg.Defaults.Country,
			Count:   cfg.Defaults.Count,
		},
		ExportDir: cfg.ExportDir,
	})

	p := tea.NewProgram(m, tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/materialcheck/internal/bundle"
	"github.com/dshills/materialcheck/internal/catalog"
	"github.com/dshills/materialcheck/internal/config"
	"github.com/dshills/materialcheck/internal/fetch"
	"github.com/dshills/materialcheck/internal/logging"
	"github.com/dshills/materialcheck/internal/reminder"
	"github.com/dshills/materialcheck/internal/schema"
	"github.com/dshills/materialcheck/internal/store"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
var version = "dev"

// exitErr carries a numeric exit code through the cobra error path.
type exitErr struct {
	code int
	msg  string
}

func (e *exitErr) Error() string { return e.msg }

// codeError returns an exitErr for the given code.
func codeError(code int, format string, args ...any) error {
	return &exitErr{code: code, msg: fmt.Sprintf(format, args...)}
}

// Exit codes.
const (
	exitFailOn  = 2
	exitInput   = 3
	exitStorage = 4
	exitOutput  = 5
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	envFile string
	store   string
	dsn     string
	now     string
	verbose bool
}

func main() {
	var g globalFlags
	root := &cobra.Command{
		Use:           "materialcheck",
		Short:         "Track and validate client website content",
		Long:          "materialcheck tracks which content a client still owes for a website project, checks submitted content against the template's quality rules, and sends escalating reminders.",
		Version:       version,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&g.envFile, "env-file", ".env", "Environment file with MATERIALCHECK_* settings")
	pf.StringVar(&g.store, "store", "", "Storage backend: memory, sqlite or redis (overrides MATERIALCHECK_STORE)")
	pf.StringVar(&g.dsn, "dsn", "", "SQLite path or redis:// URL (overrides the configured one)")
	pf.StringVar(&g.now, "now", "", "Evaluate as of this RFC3339 time instead of the current time")
	pf.BoolVar(&g.verbose, "verbose", false, "Print processing steps to stderr")

	root.AddCommand(
		statusCmd(&g),
		remindCmd(&g),
		validateCmd(&g),
		exportCmd(&g),
		importCmd(&g),
		scheduleCmd(&g),
	)

	if err := root.Execute(); err != nil {
		var ee *exitErr
		if errors.As(err, &ee) {
			fmt.Fprintln(os.Stderr, "Error:", ee.msg)
			os.Exit(ee.code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// app is the resolved runtime shared by the commands.
type app struct {
	cfg     *config.Config
	reg     *catalog.Registry
	remCfg  reminder.Config
	now     time.Time
	verbose bool
	stdout  io.Writer
	log     *log.Logger

	kind string
	dsn  string
	repo store.Repository
}

// newApp loads configuration, the template catalog and reminder settings.
func newApp(g globalFlags) (*app, error) {
	a := &app{
		now:     time.Now().UTC(),
		verbose: g.verbose,
		stdout:  os.Stdout,
		log:     logging.Discard(),
	}
	if g.verbose {
		a.log = logging.New("materialcheck")
	}
	if g.now != "" {
		t, err := time.Parse(time.RFC3339, g.now)
		if err != nil {
			return nil, codeError(exitInput, "--now must be an RFC3339 time, got %q", g.now)
		}
		a.now = t.UTC()
	}

	cfg, err := config.Load(g.envFile)
	if err != nil {
		return nil, codeError(exitInput, "loading config: %s", err)
	}
	a.cfg = cfg
	a.kind = cfg.Store
	if g.store != "" {
		a.kind = g.store
		cfg.Store = g.store
	}
	a.dsn = cfg.DSN()
	if g.dsn != "" {
		a.dsn = g.dsn
	}

	a.reg = catalog.NewRegistry()
	if cfg.CatalogDir != "" {
		if err := loadCatalogDir(a.reg, cfg.CatalogDir); err != nil {
			return nil, codeError(exitInput, "loading templates: %s", err)
		}
		a.logf("Loaded templates: %v", a.reg.IDs())
	}

	a.remCfg = reminder.DefaultConfig()
	if cfg.ReminderConfig != "" {
		rc, err := reminder.LoadConfig(cfg.ReminderConfig)
		if err != nil {
			return nil, codeError(exitInput, "%s", err)
		}
		a.remCfg = rc
	}
	if cfg.AgencyName != "" {
		a.remCfg.AgencyName = cfg.AgencyName
	}
	if cfg.PortalURL != "" {
		a.remCfg.PortalURL = cfg.PortalURL
	}
	return a, nil
}

func loadCatalogDir(reg *catalog.Registry, dir string) error {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		m, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return err
		}
		paths = append(paths, m...)
	}
	for _, p := range paths {
		if _, err := reg.LoadFile(p); err != nil {
			return err
		}
	}
	return nil
}

// repository opens the configured store on first use.
func (a *app) repository(ctx context.Context) (store.Repository, error) {
	if a.repo != nil {
		return a.repo, nil
	}
	a.logf("Opening %s store", a.kind)
	repo, err := store.Open(ctx, a.kind, a.dsn)
	if err != nil {
		return nil, codeError(exitStorage, "opening %s store: %s", a.kind, err)
	}
	a.repo = repo
	return repo, nil
}

func (a *app) close() {
	if a.repo != nil {
		if err := a.repo.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "WARN: closing store: %s\n", err)
		}
		a.repo = nil
	}
}

func (a *app) logf(format string, args ...any) {
	if a.verbose {
		a.log.Printf(format, args...)
	}
}

// source is a project with its submissions, read either from a bundle file
// or from the store.
type source struct {
	project schema.Project
	items   []schema.SubmittedItem
	files   []schema.FileRecord
	// baseDir resolves relative file references.
	baseDir string
	stored  bool
}

// load resolves ref as a bundle file path when one exists, otherwise as a
// stored project ID.
func (a *app) load(ctx context.Context, ref string) (*source, error) {
	if fi, err := os.Stat(ref); err == nil && !fi.IsDir() {
		a.logf("Loading bundle: %s", ref)
		b, err := bundle.Load(ref)
		if err != nil {
			return nil, codeError(exitInput, "loading bundle: %s", err)
		}
		a.logf("Bundle %s (%s)", b.Project.ID, b.Hash)
		return &source{
			project: b.Project,
			items:   b.Items,
			files:   b.Files,
			baseDir: filepath.Dir(ref),
		}, nil
	}

	repo, err := a.repository(ctx)
	if err != nil {
		return nil, err
	}
	a.logf("Loading project %s from store", ref)
	b, err := store.Load(ctx, repo, ref)
	if errors.Is(err, store.ErrNotFound) {
		return nil, codeError(exitInput, "project %q not found (and no such bundle file)", ref)
	}
	if err != nil {
		return nil, codeError(exitStorage, "loading project %s: %s", ref, err)
	}
	return &source{
		project: b.Project,
		items:   b.Items,
		files:   b.Files,
		baseDir: a.cfg.FilesDir,
		stored:  true,
	}, nil
}

func (a *app) fetcher(baseDir string) fetch.Fetcher {
	return fetch.New(baseDir, a.cfg.FetchTimeout)
}

// writeOutput writes data to path, or to stdout with a trailing newline.
func (a *app) writeOutput(path string, data []byte) error {
	if path != "" {
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return codeError(exitOutput, "writing output file: %s", err)
		}
		return nil
	}
	if _, err := a.stdout.Write(data); err != nil {
		return codeError(exitOutput, "writing output: %s", err)
	}
	// Ensure output ends with a newline for terminal friendliness.
	if len(data) > 0 && data[len(data)-1] != '\n' {
		fmt.Fprintln(a.stdout)
	}
	return nil
}

// run builds the app, hands it to fn and closes the store afterwards.
func run(g *globalFlags, fn func(ctx context.Context, a *app) error) error {
	a, err := newApp(*g)
	if err != nil {
		return err
	}
	defer a.close()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return fn(ctx, a)
}

func validateFormat(format string, allowed ...string) error {
	for _, f := range allowed {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("--format must be one of %v, got %q", allowed, format)
}

// warnf prints a non-fatal problem to stderr.
func warnf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "WARN: "+format+"\n", args...)
}

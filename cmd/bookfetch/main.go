package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	"github.com/pzhu/bookfetch"
	"github.com/pzhu/bookfetch/extract"
	"github.com/pzhu/bookfetch/fetch"
	"github.com/pzhu/bookfetch/fs"
	bookfetchhttp "github.com/pzhu/bookfetch/http"
	bookfetchslog "github.com/pzhu/bookfetch/slog"
	"github.com/pzhu/bookfetch/sqlite"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Run-history database path. Set before calling Run().
	DBPath string

	// SQLite database used by the run-history service.
	DB *sqlite.DB

	// Services for end-to-end testing.
	RunService bookfetch.RunStore
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("bookfetch"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle help flags using Kong
	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'bookfetch --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	// Open the run-history database
	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set BOOKFETCH_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	m.RunService = sqlite.NewRunService(m.DB)
	deps.DB = m.DB
	deps.Runs = m.RunService
	deps.Directory = bookfetchslog.NewLoggingDirectoryService(
		bookfetchhttp.NewDirectoryClient(bookfetchhttp.DefaultDirectoryBaseURL, 0),
		deps.Logger,
	)

	if cmd == "download" {
		content := bookfetchhttp.NewContentClient(
			bookfetchhttp.WithRequestTimeout(time.Duration(cli.Download.Timeout)*time.Millisecond),
			bookfetchhttp.WithConnectTimeout(time.Duration(cli.Download.ConnectTimeout)*time.Millisecond),
		)
		logf := func(format string, a ...any) {
			deps.Logger.Debug(fmt.Sprintf(format, a...))
		}

		d := &fetch.Downloader{
			Directory:   deps.Directory,
			PoolRequest: content.FetchGroup,
			Extractor:   &extract.Extractor{KeepMarkup: cli.Download.Format == "epub"},
			Status:      fs.NewStatusService(cli.Download.SaveDir),
			Runs:        m.RunService,
			Logf:        logf,
		}
		if cli.Download.Primary != "" {
			// The primary path reuses the batch client against a single base
			// URL, paced at the source's imposed rate.
			primary := bookfetch.GroupSourceFunc(func(ctx context.Context, ids string, packaged bool) (json.RawMessage, error) {
				return content.FetchGroup(ctx, cli.Download.Primary, ids, packaged)
			})
			d.Primary = bookfetchslog.NewLoggingGroupSource(
				bookfetchhttp.NewPrimarySource(primary, 0), deps.Logger)
		}
		deps.Downloader = d
	}

	return kongCtx.Run(deps)
}

func defaultDBPath() string {
	if path := os.Getenv("BOOKFETCH_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "bookfetch.db"
	}
	dir := filepath.Join(home, ".bookfetch")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "bookfetch.db")
}

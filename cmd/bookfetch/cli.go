package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/pzhu/bookfetch"
	"github.com/pzhu/bookfetch/fetch"
	"github.com/pzhu/bookfetch/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx        context.Context
	Stdout     io.Writer
	Stderr     io.Writer
	Logger     *slog.Logger
	DB         *sqlite.DB
	Runs       bookfetch.RunStore
	Directory  bookfetch.DirectoryService
	Downloader *fetch.Downloader
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool `short:"v" help:"Enable debug logging"`

	Download DownloadCmd `cmd:"" help:"Download a book's chapters"`
	Probe    ProbeCmd    `cmd:"" help:"Probe mirror endpoints for usable content"`
	Updates  UpdatesCmd  `cmd:"" help:"Check downloaded books for new chapters"`
	History  HistoryCmd  `cmd:"" help:"Show download run history"`
}

// DownloadCmd is the "download" subcommand.
type DownloadCmd struct {
	BookID string `arg:"" help:"Numeric book ID"`

	SaveDir   string   `short:"d" default:"downloads" env:"BOOKFETCH_SAVE_DIR" help:"Directory for book folders"`
	Endpoints []string `short:"e" env:"BOOKFETCH_ENDPOINTS" help:"Mirror endpoint URLs (repeatable)"`
	Primary   string   `help:"Primary source base URL; uses the rate-limited primary path instead of mirrors"`
	Format    string   `default:"txt" enum:"txt,epub" help:"Output format"`
	Name      string   `help:"Book name hint (kept over the directory name)"`

	Workers        int    `short:"w" default:"1" help:"Concurrent group fetch limit"`
	Retries        int    `default:"3" help:"Attempts per group against the mirror pool"`
	MinWait        int    `default:"250" help:"Minimum backoff in milliseconds"`
	MaxWait        int    `default:"8000" help:"Maximum backoff in milliseconds"`
	Timeout        int    `default:"15000" help:"Request timeout in milliseconds"`
	ConnectTimeout int    `default:"0" help:"Connect timeout in milliseconds (0 = request timeout only)"`
	Comments       bool   `help:"Also fetch per-chapter comment payloads (needs a configured comment source)"`
	CommentWorkers int    `default:"4" help:"Concurrent comment fetch limit, clamped to 1..8"`
	Mode           string `default:"resume" enum:"resume,full,failed,range-force" help:"Chapter selection mode"`
	Start          int    `default:"-1" help:"First chapter index (0-based, inclusive)"`
	End            int    `default:"-1" help:"Last chapter index (0-based, inclusive)"`
	RetryPasses    int    `default:"1" help:"Extra passes over chapters that failed"`
}

// ProbeCmd is the "probe" subcommand.
type ProbeCmd struct {
	Endpoints []string `arg:"" help:"Mirror endpoint URLs"`
	ChapterID string   `short:"c" required:"" help:"Chapter ID to probe with"`
	Epub      bool     `help:"Probe for packaged (epub) content"`
	Timeout   int      `default:"10000" help:"Request timeout in milliseconds"`
}

// UpdatesCmd is the "updates" subcommand.
type UpdatesCmd struct {
	SaveDir string `short:"d" default:"downloads" env:"BOOKFETCH_SAVE_DIR" help:"Directory holding book folders"`
}

// HistoryCmd is the "history" subcommand.
type HistoryCmd struct {
	Book  string `help:"Only show runs for this book ID"`
	Limit int    `default:"20" help:"Maximum number of runs to show"`
}

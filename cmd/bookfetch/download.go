package main

import (
	"fmt"
	"math"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/pzhu/bookfetch"
	"github.com/pzhu/bookfetch/fetch"
)

// Run executes the download command.
func (c *DownloadCmd) Run(deps *Dependencies) error {
	cfg := &bookfetch.Config{
		UsePrimary:     c.Primary != "",
		Endpoints:      c.Endpoints,
		RequestTimeout: time.Duration(c.Timeout) * time.Millisecond,
		ConnectTimeout: time.Duration(c.ConnectTimeout) * time.Millisecond,
		MaxRetries:     c.Retries,
		MinWait:        time.Duration(c.MinWait) * time.Millisecond,
		MaxWait:        time.Duration(c.MaxWait) * time.Millisecond,
		MaxWorkers:     c.Workers,
		Format:         c.Format,
		EnableComments: c.Comments,
		CommentWorkers: c.CommentWorkers,
		SaveDir:        c.SaveDir,
	}
	if c.Comments && deps.Downloader != nil && deps.Downloader.Comments == nil {
		fmt.Fprintln(deps.Stderr, "no comment source configured, skipping comments")
		cfg.EnableComments = false
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", bookfetch.ErrorMessage(err))
		return err
	}

	plan, err := deps.Downloader.PreparePlan(deps.Ctx, cfg, c.BookID, bookfetch.BookMeta{BookName: c.Name})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", bookfetch.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "%s: %d chapters\n", plan.Name(), len(plan.Chapters))

	// First Ctrl-C stops dispatch and lets in-flight groups drain; a second
	// one kills the process.
	cancel := &atomic.Bool{}
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		fmt.Fprintln(deps.Stderr, "stopping after in-flight groups, press Ctrl-C again to force quit")
		cancel.Store(true)
		<-sigCh
		os.Exit(1)
	}()

	opts := fetch.Options{
		Range:       chapterRange(c.Start, c.End),
		Mode:        downloadMode(c.Mode),
		Cancel:      cancel,
		RetryPasses: c.RetryPasses,
	}

	result, err := deps.Downloader.DownloadWithPlan(deps.Ctx, cfg, plan, opts)
	if result != nil {
		fmt.Fprintf(deps.Stdout, "saved %d, failed %d, canceled %d\n",
			result.Success, result.Failed, result.Canceled)
	}
	if err != nil {
		if bookfetch.ErrorCode(err) == bookfetch.ECANCELED {
			fmt.Fprintln(deps.Stdout, "stopped; run again to resume")
			return nil
		}
		fmt.Fprintf(deps.Stderr, "error: %s\n", bookfetch.ErrorMessage(err))
		return err
	}
	return nil
}

func chapterRange(start, end int) *bookfetch.ChapterRange {
	if start < 0 && end < 0 {
		return nil
	}
	if start < 0 {
		start = 0
	}
	if end < 0 {
		// Open-ended range runs to the last chapter.
		end = math.MaxInt
	}
	return &bookfetch.ChapterRange{Start: start, End: end}
}

func downloadMode(mode string) bookfetch.DownloadMode {
	switch mode {
	case "full":
		return bookfetch.ModeFull
	case "failed":
		return bookfetch.ModeFailedOnly
	case "range-force":
		return bookfetch.ModeRangeIgnoreHistory
	default:
		return bookfetch.ModeResume
	}
}

package main

import (
	"fmt"

	"github.com/pzhu/bookfetch"
)

// Run executes the history command.
func (c *HistoryCmd) Run(deps *Dependencies) error {
	filter := bookfetch.RunFilter{Limit: c.Limit}
	if c.Book != "" {
		filter.BookID = &c.Book
	}

	runs, err := deps.Runs.FindRuns(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", bookfetch.ErrorMessage(err))
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(deps.Stdout, "No runs recorded yet. Use 'bookfetch download' to start one.")
		return nil
	}

	for _, r := range runs {
		fmt.Fprintf(deps.Stdout, "%s  %s  %s  saved=%d failed=%d  %s\n",
			r.StartedAt.Format("2006-01-02 15:04"), r.BookID, r.BookName, r.Saved, r.Failed, r.Digest)
	}
	return nil
}

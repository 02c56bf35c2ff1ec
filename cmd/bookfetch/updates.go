package main

import (
	"fmt"

	"github.com/pzhu/bookfetch/fs"
)

// Run executes the updates command.
func (c *UpdatesCmd) Run(deps *Dependencies) error {
	scanner := &fs.Scanner{
		Root:      c.SaveDir,
		Directory: deps.Directory,
		Logf: func(format string, a ...any) {
			deps.Logger.Warn(fmt.Sprintf(format, a...))
		},
	}

	updates, err := scanner.Scan(deps.Ctx)
	if err != nil {
		return err
	}

	if len(updates) == 0 {
		fmt.Fprintf(deps.Stdout, "No downloaded books found under %s\n", c.SaveDir)
		return nil
	}

	for _, u := range updates {
		if u.HasUpdate() {
			fmt.Fprintf(deps.Stdout, "%s  %s  %d/%d saved, %d new\n",
				u.BookID, u.BookName, u.LocalSaved, u.RemoteTotal, u.NewChapters)
		} else {
			fmt.Fprintf(deps.Stdout, "%s  %s  up to date (%d chapters)\n",
				u.BookID, u.BookName, u.LocalSaved)
		}
	}
	return nil
}

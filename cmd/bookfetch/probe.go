package main

import (
	"fmt"
	"time"

	"github.com/pzhu/bookfetch/extract"
	"github.com/pzhu/bookfetch/fetch"
	bookfetchhttp "github.com/pzhu/bookfetch/http"
)

// Run executes the probe command.
func (c *ProbeCmd) Run(deps *Dependencies) error {
	client := bookfetchhttp.NewContentClient(
		bookfetchhttp.WithRequestTimeout(time.Duration(c.Timeout) * time.Millisecond),
	)
	extractor := &extract.Extractor{KeepMarkup: c.Epub}

	good := fetch.ProbeEndpoints(deps.Ctx, c.Endpoints, c.ChapterID, c.Epub, client.FetchGroup, extractor)

	usable := make(map[string]bool, len(good))
	for _, e := range good {
		usable[e] = true
	}
	for _, e := range c.Endpoints {
		status := "FAIL"
		if usable[e] {
			status = "ok"
		}
		fmt.Fprintf(deps.Stdout, "%-4s  %s\n", status, e)
	}

	if len(good) == 0 {
		return fmt.Errorf("no endpoint returned usable content for chapter %s", c.ChapterID)
	}
	fmt.Fprintf(deps.Stdout, "%d of %d endpoints usable\n", len(good), len(c.Endpoints))
	return nil
}

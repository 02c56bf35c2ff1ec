package main_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	main "github.com/pzhu/bookfetch/cmd/bookfetch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbeCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("separates usable and dead endpoints", func(t *testing.T) {
		t.Parallel()

		good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"data":{"42":{"title":"ch 42","content":"<p>hello</p>"}}}`))
		}))
		defer good.Close()

		empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"data":{}}`))
		}))
		defer empty.Close()

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: &bytes.Buffer{},
		}

		cmd := &main.ProbeCmd{
			Endpoints: []string{good.URL, empty.URL},
			ChapterID: "42",
			Timeout:   5000,
		}

		err := cmd.Run(deps)
		require.NoError(t, err)

		output := stdout.String()
		assert.Contains(t, output, "ok    "+good.URL)
		assert.Contains(t, output, "FAIL  "+empty.URL)
		assert.Contains(t, output, "1 of 2 endpoints usable")
	})

	t.Run("errors when nothing is usable", func(t *testing.T) {
		t.Parallel()

		empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"data":{}}`))
		}))
		defer empty.Close()

		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: &bytes.Buffer{},
			Stderr: &bytes.Buffer{},
		}

		cmd := &main.ProbeCmd{
			Endpoints: []string{empty.URL},
			ChapterID: "42",
			Timeout:   5000,
		}

		err := cmd.Run(deps)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no endpoint returned usable content")
	})
}

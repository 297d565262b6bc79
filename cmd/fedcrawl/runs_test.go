package main_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/fedcrawl"
	main "github.com/fwojciec/fedcrawl/cmd/fedcrawl"
	"github.com/fwojciec/fedcrawl/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunsCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("lists runs with counts and reason", func(t *testing.T) {
		t.Parallel()

		var gotLimit int
		runs := &mock.RunService{
			FindRunsFn: func(_ context.Context, limit int) ([]*fedcrawl.Run, error) {
				gotLimit = limit
				started := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
				return []*fedcrawl.Run{
					{ID: "run-2", Seed: "b.social", StartedAt: started},
					{
						ID: "run-1", Seed: "a.social", StartedAt: started,
						FinishedAt: started.Add(time.Minute),
						Visited:    120, Skipped: 3, Errored: 17, Reason: "completed",
					},
				}, nil
			},
		}
		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: &bytes.Buffer{},
			Runs:   runs,
		}

		err := (&main.RunsCmd{Limit: 5}).Run(deps)

		require.NoError(t, err)
		assert.Equal(t, 5, gotLimit)
		output := stdout.String()
		assert.Contains(t, output, "run-1")
		assert.Contains(t, output, "a.social")
		assert.Contains(t, output, "visited=120 skipped=3 errored=17 pending=0  completed")
		assert.Contains(t, output, "run-2")
		assert.Contains(t, output, "running")
	})

	t.Run("reports lookup failures", func(t *testing.T) {
		t.Parallel()

		runs := &mock.RunService{
			FindRunsFn: func(_ context.Context, _ int) ([]*fedcrawl.Run, error) {
				return nil, errors.New("database is locked")
			},
		}
		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: &bytes.Buffer{},
			Stderr: stderr,
			Runs:   runs,
		}

		err := (&main.RunsCmd{}).Run(deps)

		require.Error(t, err)
		assert.Contains(t, stderr.String(), "error:")
	})
}

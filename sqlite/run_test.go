package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/fedcrawl"
	"github.com/fwojciec/fedcrawl/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunService_CreateRun(t *testing.T) {
	t.Parallel()

	t.Run("assigns ID and start time", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewRunService(newTestDB(t))
		run := &fedcrawl.Run{Seed: "a.social"}

		err := svc.CreateRun(context.Background(), run)

		require.NoError(t, err)
		assert.NotEmpty(t, run.ID)
		assert.WithinDuration(t, time.Now(), run.StartedAt, 5*time.Second)

		got, err := svc.FindRunByID(context.Background(), run.ID)
		require.NoError(t, err)
		assert.Equal(t, fedcrawl.Domain("a.social"), got.Seed)
		assert.False(t, got.Finished())
		assert.WithinDuration(t, run.StartedAt, got.StartedAt, time.Microsecond)
	})

	t.Run("rejects a run without seed", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewRunService(newTestDB(t))

		err := svc.CreateRun(context.Background(), &fedcrawl.Run{})

		assert.Equal(t, fedcrawl.EINVALID, fedcrawl.ErrorCode(err))
	})
}

func TestRunService_FinishRun(t *testing.T) {
	t.Parallel()

	t.Run("stores final counts", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewRunService(newTestDB(t))
		ctx := context.Background()
		run := &fedcrawl.Run{Seed: "a.social"}
		require.NoError(t, svc.CreateRun(ctx, run))

		run.Visited, run.Skipped, run.Errored, run.Pending = 2, 1, 1, 0
		run.Reason = "completed"
		require.NoError(t, svc.FinishRun(ctx, run))

		got, err := svc.FindRunByID(ctx, run.ID)
		require.NoError(t, err)
		assert.True(t, got.Finished())
		assert.Equal(t, 2, got.Visited)
		assert.Equal(t, 1, got.Skipped)
		assert.Equal(t, 1, got.Errored)
		assert.Equal(t, 0, got.Pending)
		assert.Equal(t, "completed", got.Reason)
	})

	t.Run("returns not found for unknown run", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewRunService(newTestDB(t))

		err := svc.FinishRun(context.Background(), &fedcrawl.Run{ID: "missing", Seed: "a.social"})

		assert.Equal(t, fedcrawl.ENOTFOUND, fedcrawl.ErrorCode(err))
	})
}

func TestRunService_FindRunByID(t *testing.T) {
	t.Parallel()

	svc := sqlite.NewRunService(newTestDB(t))

	_, err := svc.FindRunByID(context.Background(), "missing")

	assert.Equal(t, fedcrawl.ENOTFOUND, fedcrawl.ErrorCode(err))
}

func TestRunService_FindRuns(t *testing.T) {
	t.Parallel()

	t.Run("returns newest first", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewRunService(newTestDB(t))
		ctx := context.Background()
		base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		for i, seed := range []fedcrawl.Domain{"a.social", "b.social", "c.social"} {
			run := &fedcrawl.Run{Seed: seed, StartedAt: base.Add(time.Duration(i) * time.Millisecond)}
			require.NoError(t, svc.CreateRun(ctx, run))
		}

		runs, err := svc.FindRuns(ctx, 0)

		require.NoError(t, err)
		require.Len(t, runs, 3)
		assert.Equal(t, fedcrawl.Domain("c.social"), runs[0].Seed)
		assert.Equal(t, fedcrawl.Domain("b.social"), runs[1].Seed)
		assert.Equal(t, fedcrawl.Domain("a.social"), runs[2].Seed)
	})

	t.Run("respects limit", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewRunService(newTestDB(t))
		ctx := context.Background()
		for range 5 {
			require.NoError(t, svc.CreateRun(ctx, &fedcrawl.Run{Seed: "a.social"}))
		}

		runs, err := svc.FindRuns(ctx, 2)

		require.NoError(t, err)
		assert.Len(t, runs, 2)
	})

	t.Run("returns empty for new database", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewRunService(newTestDB(t))

		runs, err := svc.FindRuns(context.Background(), 10)

		require.NoError(t, err)
		assert.Empty(t, runs)
	})
}

func TestRunService_Outcomes(t *testing.T) {
	t.Parallel()

	t.Run("records outcomes in order", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewRunService(newTestDB(t))
		ctx := context.Background()
		run := &fedcrawl.Run{Seed: "a.social"}
		require.NoError(t, svc.CreateRun(ctx, run))

		require.NoError(t, svc.RecordOutcome(ctx, &fedcrawl.Outcome{RunID: run.ID, Domain: "blocked.example", Status: fedcrawl.StatusSkipped}))
		require.NoError(t, svc.RecordOutcome(ctx, &fedcrawl.Outcome{RunID: run.ID, Domain: "a.social", Status: fedcrawl.StatusVisited}))
		require.NoError(t, svc.RecordOutcome(ctx, &fedcrawl.Outcome{RunID: run.ID, Domain: "c.social", Status: fedcrawl.StatusErrored, ErrorKind: "HTTPError(503)"}))

		outcomes, err := svc.FindOutcomes(ctx, run.ID)

		require.NoError(t, err)
		require.Len(t, outcomes, 3)
		assert.Equal(t, fedcrawl.Domain("blocked.example"), outcomes[0].Domain)
		assert.Equal(t, fedcrawl.StatusSkipped, outcomes[0].Status)
		assert.Equal(t, fedcrawl.StatusVisited, outcomes[1].Status)
		assert.Equal(t, "HTTPError(503)", outcomes[2].ErrorKind)
		assert.False(t, outcomes[2].RecordedAt.IsZero())
	})

	t.Run("rejects duplicate domain in the same run", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewRunService(newTestDB(t))
		ctx := context.Background()
		run := &fedcrawl.Run{Seed: "a.social"}
		require.NoError(t, svc.CreateRun(ctx, run))

		outcome := &fedcrawl.Outcome{RunID: run.ID, Domain: "a.social", Status: fedcrawl.StatusVisited}
		require.NoError(t, svc.RecordOutcome(ctx, outcome))

		err := svc.RecordOutcome(ctx, &fedcrawl.Outcome{RunID: run.ID, Domain: "a.social", Status: fedcrawl.StatusVisited})
		assert.Error(t, err)
	})

	t.Run("rejects outcome for unknown run", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewRunService(newTestDB(t))

		err := svc.RecordOutcome(context.Background(), &fedcrawl.Outcome{RunID: "missing", Domain: "a.social", Status: fedcrawl.StatusVisited})

		assert.Error(t, err)
	})

	t.Run("rejects invalid outcome", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewRunService(newTestDB(t))

		err := svc.RecordOutcome(context.Background(), &fedcrawl.Outcome{RunID: "r", Domain: "a.social", Status: fedcrawl.StatusErrored})

		assert.Equal(t, fedcrawl.EINVALID, fedcrawl.ErrorCode(err))
	})

	t.Run("works as a result sink", func(t *testing.T) {
		t.Parallel()

		svc := sqlite.NewRunService(newTestDB(t))
		ctx := context.Background()
		run := &fedcrawl.Run{Seed: "a.social"}
		require.NoError(t, svc.CreateRun(ctx, run))
		sink := &fedcrawl.RunSink{Runs: svc, RunID: run.ID}

		require.NoError(t, sink.Visited(ctx, "a.social"))
		require.NoError(t, sink.Errored(ctx, "b.social", &fedcrawl.FetchError{Kind: fedcrawl.KindTimeout}))

		outcomes, err := svc.FindOutcomes(ctx, run.ID)
		require.NoError(t, err)
		require.Len(t, outcomes, 2)
		assert.Equal(t, "TimeoutError", outcomes[1].ErrorKind)
	})
}

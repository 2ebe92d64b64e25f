package console_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/marketbloc/vendor-api/internal/console"
)

func collectCommits() (chan string, func(string)) {
	ch := make(chan string, 16)
	return ch, func(v string) { ch <- v }
}

func TestDebouncerCoalescesBurstIntoOneCommit(t *testing.T) {
	t.Parallel()

	commits, record := collectCommits()
	d := console.NewDebouncer(30*time.Millisecond, record)
	defer d.Stop()

	for _, v := range []string{"t", "tr", "tra", "tran"} {
		d.Input(v)
	}
	require.Equal(t, "tran", d.Value())

	select {
	case got := <-commits:
		require.Equal(t, "tran", got)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected a commit after the quiet window")
	}

	select {
	case got := <-commits:
		t.Fatalf("expected a single commit, got extra %q", got)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDebouncerSeparateQuietWindows(t *testing.T) {
	t.Parallel()

	commits, record := collectCommits()
	d := console.NewDebouncer(20*time.Millisecond, record)
	defer d.Stop()

	d.Input("first")
	require.Equal(t, "first", <-commits)

	d.Input("second")
	require.Equal(t, "second", <-commits)
}

func TestDebouncerFlushCommitsImmediately(t *testing.T) {
	t.Parallel()

	commits, record := collectCommits()
	d := console.NewDebouncer(time.Hour, record)
	defer d.Stop()

	d.Input("tran")
	d.Flush()

	select {
	case got := <-commits:
		require.Equal(t, "tran", got)
	case <-time.After(time.Second):
		t.Fatal("expected flush to commit immediately")
	}

	// The cancelled timer must not produce a second commit.
	select {
	case got := <-commits:
		t.Fatalf("expected no further commit, got %q", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDebouncerFlushWithoutPendingIsNoop(t *testing.T) {
	t.Parallel()

	commits, record := collectCommits()
	d := console.NewDebouncer(20*time.Millisecond, record)
	defer d.Stop()

	d.Flush()
	select {
	case got := <-commits:
		t.Fatalf("expected no commit, got %q", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDebouncerStopPreventsCommit(t *testing.T) {
	t.Parallel()

	commits, record := collectCommits()
	d := console.NewDebouncer(20*time.Millisecond, record)

	d.Input("tran")
	d.Stop()

	select {
	case got := <-commits:
		t.Fatalf("expected no commit after stop, got %q", got)
	case <-time.After(100 * time.Millisecond):
	}

	d.Input("ignored")
	d.Flush()
	select {
	case got := <-commits:
		t.Fatalf("expected stopped debouncer to stay silent, got %q", got)
	case <-time.After(50 * time.Millisecond):
	}
}

package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type countingRunner struct {
	calls chan struct{}
}

func (r *countingRunner) Run(ctx context.Context) (Run, error) {
	select {
	case r.calls <- struct{}{}:
	default:
	}
	return Run{Status: StatusCompleted}, nil
}

func TestWatcher_RunsIngestOnChange(t *testing.T) {
	defer goleak.VerifyNone(t,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)

	path := writeCatalog(t, "catalog.md", validCatalog)
	runner := &countingRunner{calls: make(chan struct{}, 1)}

	w := NewWatcher(path, runner, nil)
	w.debounce = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// The watch is registered asynchronously; keep touching the file until
	// the runner fires.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
wait:
	for {
		select {
		case <-runner.calls:
			break wait
		case <-tick.C:
			require.NoError(t, os.WriteFile(path, []byte(validCatalog), 0o644))
		case <-deadline:
			t.Fatal("watcher did not trigger ingest")
		}
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	path := writeCatalog(t, "catalog.md", validCatalog)
	w := NewWatcher(path, &countingRunner{calls: make(chan struct{}, 1)}, nil)

	assert.False(t, w.relevant(fsEvent(filepath.Join(filepath.Dir(path), "other.md"))))
	assert.True(t, w.relevant(fsEvent(path)))
}

func TestWatcher_MissingDirectory(t *testing.T) {
	w := NewWatcher(filepath.Join(t.TempDir(), "missing", "catalog.md"), &countingRunner{}, nil)
	err := w.Run(context.Background())
	assert.Error(t, err)
}

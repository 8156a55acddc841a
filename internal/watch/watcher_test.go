package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type batchRecorder struct {
	mu      sync.Mutex
	batches [][]string
	notify  chan struct{}
}

func newBatchRecorder() *batchRecorder {
	return &batchRecorder{notify: make(chan struct{}, 16)}
}

func (r *batchRecorder) onChange(_ context.Context, paths []string) {
	r.mu.Lock()
	r.batches = append(r.batches, paths)
	r.mu.Unlock()
	r.notify <- struct{}{}
}

func (r *batchRecorder) all() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]string, len(r.batches))
	copy(out, r.batches)
	return out
}

func (r *batchRecorder) waitForBatch(t *testing.T) {
	t.Helper()
	select {
	case <-r.notify:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change batch")
	}
}

func startWatcher(t *testing.T, dir string, rec *batchRecorder) *Watcher {
	t.Helper()
	w, err := New(dir, 50*time.Millisecond, rec.onChange)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	t.Cleanup(w.Stop)
	return w
}

func TestWatcher_ReportsChangedSource(t *testing.T) {
	dir := t.TempDir()
	rec := newBatchRecorder()
	w := startWatcher(t, dir, rec)
	assert.True(t, w.IsWatching())

	path := filepath.Join(dir, "Parser.cs")
	require.NoError(t, os.WriteFile(path, []byte("namespace Ichthus.Parsing { }"), 0644))

	rec.waitForBatch(t)
	batches := rec.all()
	require.NotEmpty(t, batches)
	assert.Contains(t, batches[0], "Parser.cs")
}

func TestWatcher_CoalescesRapidWrites(t *testing.T) {
	dir := t.TempDir()
	rec := newBatchRecorder()
	startWatcher(t, dir, rec)

	path := filepath.Join(dir, "Invoice.vb")
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("Namespace Ichthus.Billing\nEnd Namespace"), 0644))
		time.Sleep(5 * time.Millisecond)
	}

	rec.waitForBatch(t)
	batches := rec.all()
	require.Len(t, batches, 1, "rapid writes settle into one batch")
	assert.Equal(t, []string{"Invoice.vb"}, batches[0])
}

func TestWatcher_IgnoresUninterestingFiles(t *testing.T) {
	dir := t.TempDir()
	rec := newBatchRecorder()
	startWatcher(t, dir, rec)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.config"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Form1.Designer.cs"), []byte("x"), 0644))
	// This one should come through; the two above should not.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "guide.md"), []byte("# 1. Naming"), 0644))

	rec.waitForBatch(t)
	batches := rec.all()
	require.Len(t, batches, 1)
	assert.Equal(t, []string{"guide.md"}, batches[0])
}

func TestWatcher_PicksUpNewDirectories(t *testing.T) {
	dir := t.TempDir()
	rec := newBatchRecorder()
	startWatcher(t, dir, rec)

	sub := filepath.Join(dir, "Billing")
	require.NoError(t, os.Mkdir(sub, 0755))
	// Give the watcher a moment to register the new directory.
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(sub, "Invoice.cs"), []byte("namespace Ichthus.Billing { }"), 0644))

	rec.waitForBatch(t)
	batches := rec.all()
	require.NotEmpty(t, batches)
	assert.Contains(t, batches[len(batches)-1], filepath.Join("Billing", "Invoice.cs"))
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, 50*time.Millisecond, func(context.Context, []string) {})
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))

	w.Stop()
	w.Stop()
	assert.False(t, w.IsWatching())
}

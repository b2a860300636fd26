package watch

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// safeBuffer guards concurrent writes from the watch loop goroutine.
type safeBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *safeBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *safeBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func TestChangedGatesOnDigest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "script.py")
	require.NoError(t, os.WriteFile(path, []byte("x = 1\n"), 0644))

	w, err := New(path)
	require.NoError(t, err)
	defer w.Close()

	assert.True(t, w.Changed([]byte("x = 1\n")), "empty history counts as changed")
	w.remember([]byte("x = 1\n"))
	assert.False(t, w.Changed([]byte("x = 1\n")))
	assert.True(t, w.Changed([]byte("x = 2\n")))
}

func TestNewMissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "nope", "script.py"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "watching")
}

func TestRunInvokesOnceImmediately(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "script.py")
	require.NoError(t, os.WriteFile(path, []byte("x = 1\n"), 0644))

	w, err := New(path)
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	var runs atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func() error {
			runs.Add(1)
			return nil
		})
	}()

	require.Eventually(t, func() bool { return runs.Load() == 1 },
		2*time.Second, 10*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}

func TestRunFiresOnContentChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "script.py")
	require.NoError(t, os.WriteFile(path, []byte("x = 1\n"), 0644))

	w, err := New(path)
	require.NoError(t, err)
	defer w.Close()
	w.Debounce = 20 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	var runs atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func() error {
			runs.Add(1)
			return nil
		})
	}()

	require.Eventually(t, func() bool { return runs.Load() == 1 },
		2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("x = 2\n"), 0644))
	require.Eventually(t, func() bool { return runs.Load() == 2 },
		5*time.Second, 10*time.Millisecond)

	// Rewriting identical content must not trigger another run.
	require.NoError(t, os.WriteFile(path, []byte("x = 2\n"), 0644))
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(2), runs.Load())

	cancel()
	require.NoError(t, <-done)
}

func TestRunReportsCallbackFailureAndContinues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "script.py")
	require.NoError(t, os.WriteFile(path, []byte("x = 1\n"), 0644))

	w, err := New(path)
	require.NoError(t, err)
	defer w.Close()
	w.Debounce = 20 * time.Millisecond

	var errw safeBuffer
	w.Errw = &errw

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	var runs atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func() error {
			runs.Add(1)
			return os.ErrPermission
		})
	}()

	require.Eventually(t, func() bool { return runs.Load() == 1 },
		2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("x = 2\n"), 0644))
	require.Eventually(t, func() bool { return runs.Load() == 2 },
		5*time.Second, 10*time.Millisecond)
	assert.Contains(t, errw.String(), "warning:")

	cancel()
	require.NoError(t, <-done)
}

package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestNew(t *testing.T) {
	c := New("/tmp/inbox")
	require.NotNil(t, c)
	assert.Equal(t, "/tmp/inbox", c.RootPath())
}

func TestConnector_Scan(t *testing.T) {
	t.Run("finds supported files recursively", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "thesis.pdf"), "%PDF")
		writeFile(t, filepath.Join(root, "notes.txt"), "hello")
		writeFile(t, filepath.Join(root, "sub", "grades.csv"), "a,b")
		writeFile(t, filepath.Join(root, "sub", "deeper", "scan.PNG"), "png")

		paths, err := New(root).Scan(context.Background())
		require.NoError(t, err)

		assert.ElementsMatch(t, []string{
			filepath.Join(root, "thesis.pdf"),
			filepath.Join(root, "notes.txt"),
			filepath.Join(root, "sub", "grades.csv"),
			filepath.Join(root, "sub", "deeper", "scan.PNG"),
		}, paths)
	})

	t.Run("skips unsupported and hidden entries", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "slides.pptx"), "x")
		writeFile(t, filepath.Join(root, ".secret.txt"), "x")
		writeFile(t, filepath.Join(root, ".git", "notes.txt"), "x")
		writeFile(t, filepath.Join(root, "keep.docx"), "x")

		paths, err := New(root).Scan(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{filepath.Join(root, "keep.docx")}, paths)
	})

	t.Run("empty directory", func(t *testing.T) {
		paths, err := New(t.TempDir()).Scan(context.Background())
		require.NoError(t, err)
		assert.Empty(t, paths)
	})

	t.Run("missing root", func(t *testing.T) {
		_, err := New("/non/existent/path").Scan(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "root path error")
	})

	t.Run("root is a file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "a.txt")
		writeFile(t, file, "x")
		_, err := New(file).Scan(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a directory")
	})

	t.Run("cancelled context", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "a.txt"), "x")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := New(root).Scan(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestConnector_HandleFsEvent(t *testing.T) {
	c := New("/inbox")

	tests := []struct {
		name   string
		event  fsnotify.Event
		want   string
		wantOK bool
	}{
		{name: "create supported", event: fsnotify.Event{Name: "/inbox/a.pdf", Op: fsnotify.Create}, want: "/inbox/a.pdf", wantOK: true},
		{name: "write supported", event: fsnotify.Event{Name: "/inbox/a.txt", Op: fsnotify.Write}, want: "/inbox/a.txt", wantOK: true},
		{name: "create and write", event: fsnotify.Event{Name: "/inbox/a.csv", Op: fsnotify.Create | fsnotify.Write}, want: "/inbox/a.csv", wantOK: true},
		{name: "remove ignored", event: fsnotify.Event{Name: "/inbox/a.pdf", Op: fsnotify.Remove}},
		{name: "rename ignored", event: fsnotify.Event{Name: "/inbox/a.pdf", Op: fsnotify.Rename}},
		{name: "chmod ignored", event: fsnotify.Event{Name: "/inbox/a.pdf", Op: fsnotify.Chmod}},
		{name: "unsupported extension", event: fsnotify.Event{Name: "/inbox/a.pptx", Op: fsnotify.Create}},
		{name: "hidden file", event: fsnotify.Event{Name: "/inbox/.a.txt", Op: fsnotify.Create}},
		{name: "editor swap file", event: fsnotify.Event{Name: "/inbox/.a.txt.swp", Op: fsnotify.Write}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.handleFsEvent(tt.event)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func waitForPath(t *testing.T, ch <-chan string, want string) {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case got, ok := <-ch:
			require.True(t, ok, "channel closed before %s was reported", want)
			if got == want {
				return
			}
		case <-timeout:
			t.Fatalf("timeout waiting for %s", want)
		}
	}
}

func TestConnector_Watch(t *testing.T) {
	t.Run("reports created files", func(t *testing.T) {
		root := t.TempDir()
		c := New(root)
		defer c.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		ch, err := c.Watch(ctx)
		require.NoError(t, err)

		path := filepath.Join(root, "new.txt")
		writeFile(t, path, "content")
		waitForPath(t, ch, path)
	})

	t.Run("reports modified files", func(t *testing.T) {
		root := t.TempDir()
		path := filepath.Join(root, "existing.csv")
		writeFile(t, path, "a,b")

		c := New(root)
		defer c.Close()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		ch, err := c.Watch(ctx)
		require.NoError(t, err)

		writeFile(t, path, "a,b\nc,d")
		waitForPath(t, ch, path)
	})

	t.Run("reports files in new subdirectories", func(t *testing.T) {
		root := t.TempDir()
		c := New(root)
		defer c.Close()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		ch, err := c.Watch(ctx)
		require.NoError(t, err)

		sub := filepath.Join(root, "batch")
		require.NoError(t, os.Mkdir(sub, 0755))
		path := filepath.Join(sub, "late.txt")

		// The subdirectory watch is added asynchronously; keep writing
		// until it is picked up.
		deadline := time.Now().Add(2 * time.Second)
		for {
			writeFile(t, path, "x")
			select {
			case got := <-ch:
				if got == path {
					return
				}
			case <-time.After(50 * time.Millisecond):
			}
			if time.Now().After(deadline) {
				t.Fatal("timeout waiting for file in new subdirectory")
			}
		}
	})

	t.Run("ignores unsupported files", func(t *testing.T) {
		root := t.TempDir()
		c := New(root)
		defer c.Close()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		ch, err := c.Watch(ctx)
		require.NoError(t, err)

		writeFile(t, filepath.Join(root, "slides.pptx"), "x")
		want := filepath.Join(root, "after.txt")
		writeFile(t, want, "x")

		select {
		case got := <-ch:
			assert.Equal(t, want, got)
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for supported file")
		}
	})

	t.Run("closes channel on cancel", func(t *testing.T) {
		c := New(t.TempDir())
		defer c.Close()
		ctx, cancel := context.WithCancel(context.Background())

		ch, err := c.Watch(ctx)
		require.NoError(t, err)
		cancel()

		select {
		case _, ok := <-ch:
			assert.False(t, ok)
		case <-time.After(time.Second):
			t.Fatal("channel did not close after cancellation")
		}
	})

	t.Run("closes channel on Close", func(t *testing.T) {
		c := New(t.TempDir())
		ch, err := c.Watch(context.Background())
		require.NoError(t, err)
		require.NoError(t, c.Close())

		select {
		case _, ok := <-ch:
			assert.False(t, ok)
		case <-time.After(time.Second):
			t.Fatal("channel did not close after Close")
		}
	})

	t.Run("missing root", func(t *testing.T) {
		ch, err := New("/non/existent/path").Watch(context.Background())
		require.Error(t, err)
		assert.Nil(t, ch)
		assert.Contains(t, err.Error(), "root path error")
	})

	t.Run("closed connector", func(t *testing.T) {
		c := New(t.TempDir())
		require.NoError(t, c.Close())

		ch, err := c.Watch(context.Background())
		assert.ErrorIs(t, err, ErrClosed)
		assert.Nil(t, ch)
	})
}

func TestConnector_Close(t *testing.T) {
	c := New("/tmp/test")
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}

package chime

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigWatcherReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chime.toml")
	require.NoError(t, os.WriteFile(path, []byte("debug = false\n"), 0o644))

	cw, err := WatchConfig(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := make(chan Config, 16)
	done := make(chan error, 1)
	go func() {
		done <- cw.Run(ctx, func(cfg Config, err error) {
			if err == nil {
				got <- cfg
			}
		})
	}()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.toml"), []byte("debug = true\n"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("debug = true\n[window]\nwidth = 640\n"), 0o644))

	timeout := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-got:
			// A truncating write can be observed before the new contents.
			if !cfg.Debug {
				continue
			}
			assert.Equal(t, 640, cfg.Window.Width)
			cancel()
			assert.ErrorIs(t, <-done, context.Canceled)
			return
		case <-timeout:
			t.Fatal("no reload observed")
		}
	}
}

func TestConfigWatcherReportsParseErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chime.toml")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	cw, err := WatchConfig(path)
	require.NoError(t, err)

	errs := make(chan error, 16)
	go cw.Run(context.Background(), func(_ Config, err error) {
		if err != nil {
			errs <- err
		}
	})
	defer cw.Close()

	require.NoError(t, os.WriteFile(path, []byte("[window]\nfullscreen = true\n"), 0o644))

	select {
	case err := <-errs:
		assert.ErrorContains(t, err, "chime: parse config")
	case <-time.After(5 * time.Second):
		t.Fatal("no parse error reported")
	}
}

func TestWatchConfigMissingDirectory(t *testing.T) {
	_, err := WatchConfig(filepath.Join(t.TempDir(), "missing", "chime.toml"))
	assert.ErrorContains(t, err, "chime: watch config")
}

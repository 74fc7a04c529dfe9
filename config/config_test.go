// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	c := New()
	assert.Equal(t, 60, c.FPS)
	assert.Equal(t, Duration(30*time.Second), c.LoadTimeout)
	assert.Equal(t, "offscreen", c.Engine.Name)
	assert.Equal(t, slog.LevelInfo, c.Level())
	assert.NoError(t, c.Validate())
}

func TestOpenTOML(t *testing.T) {
	file := filepath.Join(t.TempDir(), "glam.toml")
	require.NoError(t, os.WriteFile(file, []byte(`fps = 30
load_timeout = "5s"
log_level = "debug"

[engine]
dump = true
`), 0o644))
	c := New()
	require.NoError(t, c.Open(file))
	assert.Equal(t, 30, c.FPS)
	assert.Equal(t, Duration(5*time.Second), c.LoadTimeout)
	assert.Equal(t, slog.LevelDebug, c.Level())
	assert.True(t, c.Engine.Dump)
	assert.Equal(t, "offscreen", c.Engine.Name)
	assert.Equal(t, 4, c.MaxLoads)
}

func TestOpenYAML(t *testing.T) {
	file := filepath.Join(t.TempDir(), "glam.yaml")
	require.NoError(t, os.WriteFile(file, []byte("frames: 10\nbase_url: https://example.com/models\nload_timeout: 1m\n"), 0o644))
	c := New()
	require.NoError(t, c.Open(file))
	assert.Equal(t, 10, c.Frames)
	assert.Equal(t, "https://example.com/models", c.BaseURL)
	assert.Equal(t, Duration(time.Minute), c.LoadTimeout)
}

func TestOpenErrors(t *testing.T) {
	dir := t.TempDir()
	c := New()
	assert.Error(t, c.Open(filepath.Join(dir, "missing.toml")))

	unknown := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(unknown, []byte("colour = 1\n"), 0o644))
	assert.Error(t, c.Open(unknown))

	ini := filepath.Join(dir, "glam.ini")
	require.NoError(t, os.WriteFile(ini, []byte("fps=1"), 0o644))
	assert.ErrorContains(t, c.Open(ini), "unsupported")
}

func TestSaveRoundTrip(t *testing.T) {
	for _, ext := range []string{".toml", ".yaml"} {
		file := filepath.Join(t.TempDir(), "glam"+ext)
		c := New()
		c.FPS = 24
		c.LoadTimeout = Duration(1500 * time.Millisecond)
		require.NoError(t, c.Save(file))
		o := &Config{}
		require.NoError(t, o.Open(file))
		assert.Equal(t, c, o, ext)
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("GLAM_FPS", "12")
	t.Setenv("GLAM_LOAD_TIMEOUT", "250ms")
	env := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(env, []byte("GLAM_BASE_URL=/srv/models\nGLAM_FPS=99\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("GLAM_BASE_URL") })

	c := New()
	require.NoError(t, c.LoadEnv(env))
	assert.Equal(t, 12, c.FPS)
	assert.Equal(t, Duration(250*time.Millisecond), c.LoadTimeout)
	assert.Equal(t, "/srv/models", c.BaseURL)

	t.Setenv("GLAM_WATCH", "true")
	require.NoError(t, c.LoadEnv())
	assert.True(t, c.Watch)

	t.Setenv("GLAM_FRAMES", "many")
	assert.ErrorContains(t, c.LoadEnv(), "GLAM_FRAMES")
}

func TestValidate(t *testing.T) {
	c := New()
	c.FPS = 0
	assert.Error(t, c.Validate())
	c = New()
	c.LogLevel = "loud"
	assert.Error(t, c.Validate())
	c = New()
	c.Engine.Name = ""
	assert.Error(t, c.Validate())
}

func TestClone(t *testing.T) {
	c := New()
	c.FPS = 30
	c.Engine.Dump = true
	cp := c.Clone()
	assert.Equal(t, c, cp)
	cp.Engine.Name = "other"
	cp.FPS = 10
	assert.Equal(t, "offscreen", c.Engine.Name)
	assert.Equal(t, 30, c.FPS)
}

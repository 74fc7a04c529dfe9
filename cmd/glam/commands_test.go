// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cogentcore.org/glam/config"
	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const doc = `<style>#b { width: 4 } .lit { intensity: 2 }</style>
<glam id="main">
	<camera z="10"></camera>
	<point-light class="lit" y="3"></point-light>
	<box id="b"></box>
	<import id="tri" src="tri.obj"></import>
</glam>`

func writeDoc(t *testing.T) string {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tri.obj"), []byte("o tri\nv 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"), 0o644))
	file := filepath.Join(dir, "index.html")
	require.NoError(t, os.WriteFile(file, []byte(doc), 0o644))
	return file
}

func run(t *testing.T, args ...string) (string, error) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTree(t *testing.T) {
	out, err := run(t, "-q", "tree", writeDoc(t))
	require.NoError(t, err)
	assert.Contains(t, out, "scene main")
	assert.Contains(t, out, "mesh b [box]")
	assert.Contains(t, out, "group point-light at [0 3 0]")
	assert.Contains(t, out, "light point-light [point]")
	assert.Contains(t, out, "camera camera")
	assert.Contains(t, out, "[mesh]")
}

func TestStyles(t *testing.T) {
	out, err := run(t, "-q", "styles", writeDoc(t))
	require.NoError(t, err)
	assert.Contains(t, out, "#b { width: 4; }")
	assert.Contains(t, out, ".lit { intensity: 2; }")
}

func TestView(t *testing.T) {
	_, err := run(t, "-q", "--frames", "2", "--fps", "200", "view", writeDoc(t))
	require.NoError(t, err)
}

func TestHomePaths(t *testing.T) {
	home := filepath.Dir(writeDoc(t))
	require.NoError(t, os.WriteFile(filepath.Join(home, "glam.toml"), []byte("frames = 1\nfps = 500\n"), 0o644))
	t.Setenv("HOME", home)
	homedir.DisableCache = true
	defer func() { homedir.DisableCache = false }()

	out, err := run(t, "-q", "--config", "~/glam.toml", "--base-url", "~", "tree", "~/index.html")
	require.NoError(t, err)
	assert.Contains(t, out, "scene main")
	assert.Contains(t, out, "[mesh]")

	paths, err := expand([]string{"~/a.env", "b.env", ""})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(home, "a.env"), "b.env", ""}, paths)
}

func TestConfigErrors(t *testing.T) {
	file := writeDoc(t)
	_, err := run(t, "-q", "--fps", "0", "tree", file)
	assert.Error(t, err)
	_, err = run(t, "-q", "--config", filepath.Join(t.TempDir(), "none.toml"), "tree", file)
	assert.Error(t, err)

	cfg := filepath.Join(t.TempDir(), "glam.toml")
	require.NoError(t, os.WriteFile(cfg, []byte("[engine]\nname = \"vulkan\"\n"), 0o644))
	_, err = run(t, "-q", "--config", cfg, "tree", file)
	assert.ErrorContains(t, err, "unknown engine")
}

func TestNoScenes(t *testing.T) {
	file := filepath.Join(t.TempDir(), "empty.html")
	require.NoError(t, os.WriteFile(file, []byte("<p>nothing here</p>"), 0o644))
	_, err := run(t, "-q", "tree", file)
	assert.ErrorContains(t, err, "no glam scenes")
}

func TestWatch(t *testing.T) {
	file := writeDoc(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes, err := watch(ctx, []string{file})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(file), "other.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(file, []byte(doc), 0o644))
	select {
	case name := <-changes:
		assert.Equal(t, file, name)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestViewReload(t *testing.T) {
	file := writeDoc(t)
	opts := &options{cfg: config.New()}
	opts.cfg.FPS = 200

	changes := make(chan string, 1)
	changes <- file
	reload, err := opts.view(context.Background(), io.Discard, []string{file}, changes)
	assert.NoError(t, err)
	assert.True(t, reload)

	opts.cfg.Frames = 2
	reload, err = opts.view(context.Background(), io.Discard, []string{file}, nil)
	assert.NoError(t, err)
	assert.False(t, reload)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	reload, err = opts.view(ctx, io.Discard, []string{filepath.Join(t.TempDir(), "none.html")}, make(chan string))
	assert.NoError(t, err)
	assert.False(t, reload)
}

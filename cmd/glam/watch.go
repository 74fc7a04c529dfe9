// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settleTime is how long to wait for more changes before reporting,
// as editors often write a file in several steps.
const settleTime = 100 * time.Millisecond

// watch returns a channel that receives the name of a changed file
// each time one of the given files is written, created or renamed
// into place. The directories of the files are watched, so the files
// may be replaced. Watching stops when ctx is done.
func watch(ctx context.Context, files []string) (<-chan string, error) {
	files, err := expand(files)
	if err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	names := map[string]bool{}
	dirs := map[string]bool{}
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			watcher.Close()
			return nil, err
		}
		names[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		dirs[dir] = true
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, err
		}
	}
	changes := make(chan string, 1)
	go func() {
		defer watcher.Close()
		var pending string
		var settle <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !names[filepath.Clean(event.Name)] {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				pending = event.Name
				settle = time.After(settleTime)
			case <-settle:
				settle = nil
				select {
				case changes <- pending:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("watching documents", "err", err)
			}
		}
	}()
	return changes, nil
}

// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"os/signal"
	"slices"
	"strings"
	"time"

	"cogentcore.org/glam"
	"cogentcore.org/glam/base/errors"
	"cogentcore.org/glam/base/logx"
	"cogentcore.org/glam/config"
	"cogentcore.org/glam/engine"
	"cogentcore.org/glam/engine/offscreen"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
)

// options are the flags shared by all commands.
type options struct {
	verbose  int
	quiet    bool
	config   string
	envFiles []string
	fps      int
	frames   int
	baseURL  string
	timeout  time.Duration
	watch    bool

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:          "glam",
		Short:        "glam renders 3D scenes described by markup in HTML documents",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}
	pf := root.PersistentFlags()
	pf.CountVarP(&opts.verbose, "verbose", "v", "log more: -v for info, -vv for debug")
	pf.BoolVarP(&opts.quiet, "quiet", "q", false, "only log errors")
	pf.StringVarP(&opts.config, "config", "c", "", "config file (.toml or .yaml)")
	pf.StringSliceVar(&opts.envFiles, "env", nil, ".env files with GLAM_ variables")
	pf.IntVar(&opts.fps, "fps", 60, "frames per second")
	pf.IntVar(&opts.frames, "frames", 0, "number of frames to run; 0 runs until interrupted")
	pf.StringVar(&opts.baseURL, "base-url", "", "url or directory that model urls are relative to")
	pf.DurationVar(&opts.timeout, "timeout", 30*time.Second, "time limit of each model load")

	root.AddCommand(newViewCmd(opts), newTreeCmd(opts), newStylesCmd(opts))
	return root
}

// load reads the config file and the environment, then applies
// the flags that were set explicitly.
func (o *options) load(cmd *cobra.Command) error {
	paths, err := expand(append([]string{o.config}, o.envFiles...))
	if err != nil {
		return err
	}
	cfg := config.New()
	if paths[0] != "" {
		if err := cfg.Open(paths[0]); err != nil {
			return err
		}
	}
	if err := cfg.LoadEnv(paths[1:]...); err != nil {
		return err
	}
	fl := cmd.Flags()
	if fl.Changed("fps") {
		cfg.FPS = o.fps
	}
	if fl.Changed("frames") {
		cfg.Frames = o.frames
	}
	if fl.Changed("base-url") {
		cfg.BaseURL = o.baseURL
	}
	if !strings.Contains(cfg.BaseURL, "://") {
		if cfg.BaseURL, err = homedir.Expand(cfg.BaseURL); err != nil {
			return err
		}
	}
	if fl.Changed("watch") {
		cfg.Watch = o.watch
	}
	if fl.Changed("timeout") {
		cfg.LoadTimeout = config.Duration(o.timeout)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if o.verbose > 0 || o.quiet {
		logx.UserLevel = logx.LevelFromFlags(o.verbose > 1, o.verbose == 1, o.quiet)
	} else {
		logx.UserLevel = cfg.Level()
	}
	logx.SetDefaultLogger()
	o.cfg = cfg
	return nil
}

// expand expands a leading ~ in each of the paths to the home directory.
func expand(paths []string) ([]string, error) {
	res := make([]string, len(paths))
	for i, p := range paths {
		ep, err := homedir.Expand(p)
		if err != nil {
			return nil, err
		}
		res[i] = ep
	}
	return res, nil
}

func newEngine(cfg *config.Config) (engine.Engine, error) {
	switch cfg.Engine.Name {
	case "offscreen":
		return offscreen.New(), nil
	default:
		return nil, fmt.Errorf("unknown engine %q", cfg.Engine.Name)
	}
}

// open makes a runtime and parses the documents into it.
// It is an error for the documents to have no scenes if needScenes.
func (o *options) open(files []string, needScenes bool) (*glam.Runtime, error) {
	files, err := expand(files)
	if err != nil {
		return nil, err
	}
	eng, err := newEngine(o.cfg)
	if err != nil {
		return nil, err
	}
	rt := glam.New(eng, o.cfg)
	var errs []error
	for _, f := range files {
		if _, err := rt.ParseFile(f); err != nil {
			errs = append(errs, err)
		}
	}
	if needScenes && rt.Registry.Scenes.Len() == 0 && len(errs) == 0 {
		errs = append(errs, errors.New("no glam scenes found"))
	}
	return rt, errors.Join(errs...)
}

func newViewCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view file...",
		Short: "Build the scenes of the documents and run them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			var changes <-chan string
			if opts.cfg.Watch {
				var err error
				changes, err = watch(ctx, args)
				if err != nil {
					return fmt.Errorf("watching documents: %w", err)
				}
			}
			for {
				reload, err := opts.view(ctx, cmd.OutOrStdout(), args, changes)
				if !reload {
					return err
				}
				errors.Log(err)
			}
		},
	}
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "reload the documents when they change")
	return cmd
}

// view opens the documents and runs their scenes until ctx is done
// or the configured frames have run. It returns true if it stopped
// because a document changed and should be opened again.
func (o *options) view(ctx context.Context, w io.Writer, files []string, changes <-chan string) (bool, error) {
	rt, err := o.open(files, true)
	if err != nil {
		if rt != nil {
			rt.Close()
		}
		if changes == nil {
			return false, err
		}
		errors.Log(err)
		return waitChange(ctx, changes), nil
	}
	defer rt.Close()
	if _, err := rt.CreateViewers(); err != nil {
		errors.Log(err)
	}
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	changed := make(chan bool, 1)
	go func() {
		changed <- waitChange(runCtx, changes)
		cancel()
	}()
	err = rt.Run(runCtx)
	cancel()
	if o.cfg.Engine.Dump {
		errors.Log(dumpScenes(w, rt))
	}
	if <-changed && ctx.Err() == nil {
		return true, err
	}
	return false, err
}

// waitChange waits for a document change, returning false if ctx is
// done first or there is nothing to watch.
func waitChange(ctx context.Context, changes <-chan string) bool {
	if changes == nil {
		<-ctx.Done()
		return false
	}
	select {
	case <-ctx.Done():
		return false
	case name := <-changes:
		slog.Info("document changed, reloading", "file", name)
		return true
	}
}

func newTreeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "tree file...",
		Short: "Print the scene graphs of the documents once models are loaded",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := opts.open(args, true)
			if err != nil {
				if rt != nil {
					rt.Close()
				}
				return err
			}
			defer rt.Close()
			vs, err := rt.CreateViewers()
			if err != nil {
				errors.Log(err)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(opts.cfg.LoadTimeout)+time.Second)
			defer cancel()
			if err := rt.Loader.Wait(ctx); err != nil {
				return fmt.Errorf("waiting for models: %w", err)
			}
			for _, v := range vs {
				if err := v.Frame(v.Scene.Clock.Now()); err != nil {
					return err
				}
			}
			return dumpScenes(cmd.OutOrStdout(), rt)
		},
	}
}

func dumpScenes(w io.Writer, rt *glam.Runtime) error {
	for _, v := range rt.Viewers {
		if v.Scene == nil {
			continue
		}
		if err := offscreen.Dump(w, v.Scene.Node); err != nil {
			return err
		}
	}
	return nil
}

func newStylesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "styles file...",
		Short: "Print the style rules of the documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := opts.open(args, false)
			if rt == nil {
				return err
			}
			defer rt.Close()
			w := cmd.OutOrStdout()
			for _, sel := range rt.Registry.Styles.Selectors() {
				decl, _ := rt.Registry.Styles.Lookup(sel)
				fmt.Fprintf(w, "%s {", sel)
				for _, prop := range slices.Sorted(maps.Keys(decl)) {
					fmt.Fprintf(w, " %s: %s;", prop, decl[prop])
				}
				fmt.Fprintln(w, " }")
			}
			return err
		},
	}
}

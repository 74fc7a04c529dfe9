// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command glam views glam scenes in HTML documents and prints
// their scene graphs and styles.
package main

import (
	"os"

	"cogentcore.org/glam/base/logx"
)

func main() {
	logx.SetDefaultLogger()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

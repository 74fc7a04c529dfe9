// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package events

import "fmt"

// Load is a [Loaded], [Progress] or [LoadError] event about
// an asynchronous load of the given URL.
type Load struct {
	Base

	// URL is the resource being loaded.
	URL string

	// Loaded is the number of bytes read so far.
	Loaded int64

	// Total is the total number of bytes, or -1 if unknown.
	Total int64

	// Err is the failure, for [LoadError] events.
	Err error
}

// NewLoad returns a new load event of the given type.
func NewLoad(typ Types, url string) *Load {
	ev := &Load{URL: url, Total: -1}
	ev.Init(typ)
	return ev
}

func (ev *Load) String() string {
	if ev.Err != nil {
		return fmt.Sprintf("%v{URL: %s, Err: %v}", ev.Type(), ev.URL, ev.Err)
	}
	return fmt.Sprintf("%v{URL: %s, %d/%d}", ev.Type(), ev.URL, ev.Loaded, ev.Total)
}

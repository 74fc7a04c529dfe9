// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package events

// Listeners holds the listener functions of one event target,
// such as an element, a timer or a load task, by event type.
type Listeners map[Types][]func(ev Event)

// Init makes the map if it is nil.
func (ls *Listeners) Init() {
	if *ls == nil {
		*ls = make(map[Types][]func(Event))
	}
}

// Add adds a function for the given type.
func (ls *Listeners) Add(typ Types, fun func(Event)) {
	ls.Init()
	(*ls)[typ] = append((*ls)[typ], fun)
}

// Has returns whether there are any functions for the given type.
func (ls *Listeners) Has(typ Types) bool {
	return len((*ls)[typ]) > 0
}

// Delete removes all functions for the given type.
func (ls *Listeners) Delete(typ Types) {
	if *ls != nil {
		delete(*ls, typ)
	}
}

// Call calls the functions for the type of the event, most recently
// added first, until one of them marks the event as handled.
// Later listeners can thus override earlier ones.
func (ls *Listeners) Call(ev Event) {
	if ev.IsHandled() {
		return
	}
	funs := (*ls)[ev.Type()]
	for i := len(funs) - 1; i >= 0; i-- {
		funs[i](ev)
		if ev.IsHandled() {
			return
		}
	}
}

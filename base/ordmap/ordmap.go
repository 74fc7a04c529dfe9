// Copyright (c) 2022, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ordmap implements a map that also keeps the order in
// which keys were first added. Adding a key again replaces its
// value in place.
package ordmap

import "iter"

// KeyValue is one entry of a [Map].
type KeyValue[K comparable, V any] struct {
	Key   K
	Value V
}

// Map is an ordered map.
type Map[K comparable, V any] struct {

	// Order holds the entries in the order their keys were first added.
	Order []KeyValue[K, V]

	// Map is the index of each key in Order.
	Map map[K]int
}

// New returns a new empty map.
func New[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{Map: map[K]int{}}
}

// Add sets the value for the key, keeping the position of a key
// that is already present.
func (om *Map[K, V]) Add(key K, val V) {
	if om.Map == nil {
		om.Map = map[K]int{}
	}
	kv := KeyValue[K, V]{Key: key, Value: val}
	if i, ok := om.Map[key]; ok {
		om.Order[i] = kv
		return
	}
	om.Map[key] = len(om.Order)
	om.Order = append(om.Order, kv)
}

// Get returns the value for the key and whether it is present.
func (om *Map[K, V]) Get(key K) (V, bool) {
	if om != nil {
		if i, ok := om.Map[key]; ok {
			return om.Order[i].Value, true
		}
	}
	var zv V
	return zv, false
}

// ValueByKey returns the value for the key, or the zero value.
func (om *Map[K, V]) ValueByKey(key K) V {
	v, _ := om.Get(key)
	return v
}

// IndexByKey returns the position of the key, or -1.
func (om *Map[K, V]) IndexByKey(key K) int {
	if i, ok := om.Map[key]; ok {
		return i
	}
	return -1
}

// Len returns the number of entries.
func (om *Map[K, V]) Len() int {
	if om == nil {
		return 0
	}
	return len(om.Order)
}

// Keys returns the keys in order.
func (om *Map[K, V]) Keys() []K {
	keys := make([]K, 0, om.Len())
	for k := range om.All() {
		keys = append(keys, k)
	}
	return keys
}

// All iterates over the entries in order.
func (om *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		if om == nil {
			return
		}
		for _, kv := range om.Order {
			if !yield(kv.Key, kv.Value) {
				return
			}
		}
	}
}

// Reset removes all entries.
func (om *Map[K, V]) Reset() {
	om.Order = nil
	om.Map = map[K]int{}
}

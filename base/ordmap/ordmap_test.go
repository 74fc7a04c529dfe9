// Copyright (c) 2022, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ordmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMap(t *testing.T) {
	om := New[string, int]()
	om.Add("a", 1)
	om.Add("b", 2)
	om.Add("c", 3)
	om.Add("a", 10)

	assert.Equal(t, 3, om.Len())
	assert.Equal(t, []string{"a", "b", "c"}, om.Keys())
	assert.Equal(t, 10, om.ValueByKey("a"))
	assert.Equal(t, 2, om.IndexByKey("c"))
	assert.Equal(t, -1, om.IndexByKey("z"))

	_, ok := om.Get("z")
	assert.False(t, ok)

	var vals []int
	for _, v := range om.All() {
		vals = append(vals, v)
	}
	assert.Equal(t, []int{10, 2, 3}, vals)

	om.Reset()
	assert.Equal(t, 0, om.Len())
	om.Add("d", 4)
	assert.Equal(t, []string{"d"}, om.Keys())
}

func TestNilMap(t *testing.T) {
	var om *Map[string, int]
	assert.Equal(t, 0, om.Len())
	assert.Empty(t, om.Keys())
	_, ok := om.Get("a")
	assert.False(t, ok)
}

// Copyright (c) 2012-2024 Eli Janssen
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package router

import (
	"net/http"
	"testing"
	"time"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func TestHTTPDateGoroutineUpdate(t *testing.T) {
	t.Parallel()
	d := newHTTPDate()
	n := d.String()
	time.Sleep(2 * time.Second)
	l := d.String()
	assert.Check(t, n != l, "Date did not update as expected: %s == %s", n, l)
}

func TestHTTPDateManualUpdateUninitialized(t *testing.T) {
	t.Parallel()
	d := &httpDate{}

	n := d.String()
	time.Sleep(2 * time.Second)
	d.Update()
	l := d.String()
	assert.Check(t, n != l, "Date did not update as expected: %s == %s", n, l)
}

func TestHTTPDateFormat(t *testing.T) {
	t.Parallel()
	d := &httpDate{}
	d.Update()
	_, err := time.Parse(http.TimeFormat, d.String())
	assert.Check(t, err)
	assert.Check(t, is.Contains(d.String(), "GMT"))
}

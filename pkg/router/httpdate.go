// Copyright (c) 2012-2024 Eli Janssen
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package router

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cactus/mlog"
)

// httpDate caches the formatted HTTP Date header value, refreshed once a
// second, so each response does not format the time itself.
type httpDate struct {
	dateValue   atomic.Value
	onceUpdater sync.Once
}

func (h *httpDate) String() string {
	stamp := h.dateValue.Load()
	if stamp == nil {
		mlog.Print("got a nil datestamp. Trying to recover...")
		h.Update()
		return time.Now().UTC().Format(http.TimeFormat)
	}
	return stamp.(string)
}

func (h *httpDate) Update() {
	h.dateValue.Store(time.Now().UTC().Format(http.TimeFormat))
}

func newHTTPDate() *httpDate {
	d := &httpDate{}
	d.Update()
	// spawn a single formattedDate updater
	d.onceUpdater.Do(func() {
		go func() {
			for range time.Tick(1 * time.Second) {
				d.Update()
			}
		}()
	})
	return d
}

var formattedDate = newHTTPDate()

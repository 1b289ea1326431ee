// Copyright (c) 2012-2024 Eli Janssen
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package router provides the front http.Handler for go-dirserve.
package router

import (
	"net/http"
)

const (
	// HealthCheckPath always answers 200 with an empty body.
	HealthCheckPath = "/healthcheck"
	// StatusPath is routed to StatsHandler when set.
	StatusPath = "/status"
	// MetricsPath is routed to MetricsHandler when set.
	MetricsPath = "/metrics"
)

// DumbRouter is a basic, special purpose, http router
type DumbRouter struct {
	ServerName     string
	AddHeaders     map[string]string
	FileHandler    http.Handler
	StatsHandler   http.Handler
	MetricsHandler http.Handler
}

// SetHeaders sets the headers on the response
func (dr *DumbRouter) SetHeaders(w http.ResponseWriter) {
	h := w.Header()
	for k, v := range dr.AddHeaders {
		h.Set(k, v)
	}
	h.Set("Date", formattedDate.String())
	h.Set("Server", dr.ServerName)
}

// HealthCheckHandler is HTTP handler for confirming the backend service
// is available from an external client, such as a load balancer.
func (dr *DumbRouter) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// ServeHTTP fulfills the http server interface
func (dr *DumbRouter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// set some default headers
	dr.SetHeaders(w)

	if r.Method != http.MethodHead && r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	switch r.URL.Path {
	case HealthCheckPath:
		dr.HealthCheckHandler(w, r)
		return
	case StatusPath:
		if dr.StatsHandler != nil {
			dr.StatsHandler.ServeHTTP(w, r)
			return
		}
	case MetricsPath:
		if dr.MetricsHandler != nil {
			dr.MetricsHandler.ServeHTTP(w, r)
			return
		}
	}

	if dr.FileHandler != nil {
		dr.FileHandler.ServeHTTP(w, r)
		return
	}

	http.Error(w, "404 Not Found", http.StatusNotFound)
}

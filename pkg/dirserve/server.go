// Copyright (c) 2012-2024 Eli Janssen
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package dirserve provides a read-only HTTP file server confined to a
// single root directory, with simple HTML directory listings.
package dirserve

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/cactus/mlog"
)

// notFoundBody is the only error body a client ever sees.
const notFoundBody = "404 Not Found"

// sniffLen is the number of bytes http.DetectContentType considers.
const sniffLen = 512

// Config holds configuration data used when creating a Server with New.
type Config struct {
	// Root is the directory to serve. It is canonicalized once at
	// construction and never changes afterwards.
	Root string
	// Keepalive enable/disable
	DisableKeepAlives bool
}

// MetricsCollector is the interface for a per-request counter collector.
// *stats.ServeStats satisfies it.
type MetricsCollector interface {
	AddServed()
	AddBytes(bc int64)
	AddNotFound()
}

// A Server serves files and directory listings below a fixed root.
type Server struct {
	config    *Config
	resolver  *Resolver
	hidden    PathFilter
	collector MetricsCollector
}

// SetMetricsCollector sets a metrics collector. Call before serving.
func (s *Server) SetMetricsCollector(mc MetricsCollector) {
	s.collector = mc
}

// Resolver returns the Server's path resolver.
func (s *Server) Resolver() *Resolver {
	return s.resolver
}

// ServeHTTP resolves the request path against the root and answers with a
// directory listing, the file contents, or a not found response. Rejected
// and missing paths are indistinguishable to the client.
func (s *Server) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if s.config.DisableKeepAlives {
		w.Header().Set("Connection", "close")
	}

	if mlog.HasDebug() {
		mlog.Debugm("client request", httpReqToMlogMap(req))
	}

	requested := strings.TrimPrefix(req.URL.Path, "/")
	rp := s.resolver.Resolve(requested)
	requestsResolved.WithLabelValues(rp.Kind.String()).Inc()

	if mlog.HasDebug() {
		mlog.Debugm("resolved request path", resolvedToMlogMap(rp))
	}

	switch rp.Kind {
	case Directory:
		s.serveDirectory(w, req, rp, requested)
	case File:
		s.serveFile(w, req, rp, requested)
	case Rejected, Missing:
		s.notFound(w)
	default:
		s.notFound(w)
	}
}

func (s *Server) notFound(w http.ResponseWriter) {
	if s.collector != nil {
		s.collector.AddNotFound()
	}
	http.Error(w, notFoundBody, http.StatusNotFound)
}

func (s *Server) serveDirectory(w http.ResponseWriter, req *http.Request, rp ResolvedPath, requested string) {
	body, err := RenderListing(rp.Path, rp.Rel, s.hidden, requested)
	if err != nil {
		listingFailed.Inc()
		if mlog.HasDebug() {
			mlog.Debugm("listing failed", mlog.Map{"err": err, "path": rp.Path})
		}
		s.notFound(w)
		return
	}

	if s.collector != nil {
		s.collector.AddServed()
	}

	h := w.Header()
	h.Set("Content-Type", "text/html; charset=utf-8")
	h.Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)

	if req.Method == http.MethodHead {
		return
	}

	if _, err := w.Write(body); err != nil {
		s.logWriteError(err, req)
	}
}

// contentType infers the content type from the requested name, falling back
// to sniffing the start of the file. The file offset is reset afterwards.
func contentType(name string, f io.ReadSeeker, buf []byte) (string, error) {
	if ctype := mime.TypeByExtension(path.Ext(name)); ctype != "" {
		return ctype, nil
	}

	n, err := io.ReadFull(f, buf[:sniffLen])
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return http.DetectContentType(buf[:n]), nil
}

func (s *Server) serveFile(w http.ResponseWriter, req *http.Request, rp ResolvedPath, requested string) {
	// #nosec G304 -- rp.Path has passed the containment check
	f, err := os.Open(rp.Path)
	if err != nil {
		if mlog.HasDebug() {
			mlog.Debugm("could not open file", mlog.Map{"err": err, "path": rp.Path})
		}
		s.notFound(w)
		return
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil || !fi.Mode().IsRegular() {
		if mlog.HasDebug() {
			mlog.Debugm("could not stat file", mlog.Map{"err": err, "path": rp.Path})
		}
		s.notFound(w)
		return
	}

	// get a []byte from bufpool, and put it back on defer
	bufp := bufPool.Get().(*[]byte)
	defer bufPool.Put(bufp)
	buf := *bufp

	ctype, err := contentType(requested, f, buf)
	if err != nil {
		if mlog.HasDebug() {
			mlog.Debugm("could not read file", mlog.Map{"err": err, "path": rp.Path})
		}
		s.notFound(w)
		return
	}

	if s.collector != nil {
		s.collector.AddServed()
	}

	h := w.Header()
	h.Set("Content-Type", ctype)
	h.Set("Content-Length", strconv.FormatInt(fi.Size(), 10))
	w.WriteHeader(http.StatusOK)

	if req.Method == http.MethodHead {
		return
	}

	written, err := io.CopyBuffer(w, f, buf)
	if written > 0 {
		bytesServed.Add(float64(written))
		if s.collector != nil {
			s.collector.AddBytes(written)
		}
	}
	if err != nil {
		s.logWriteError(err, req)
		return
	}

	if mlog.HasDebug() {
		mlog.Debugm("response to client", mlog.Map{"path": rp.Path, "bytes": written})
	}
}

func (s *Server) logWriteError(err error, req *http.Request) {
	responseFailed.Inc()

	// client aborted/closed request, which is why the write failed to finish
	if errors.Is(err, context.Canceled) {
		if mlog.HasDebug() {
			mlog.Debugm("client aborted request", httpReqToMlogMap(req))
		}
		return
	}

	// only log broken pipe errors at debug level
	if isBrokenPipe(err) {
		if mlog.HasDebug() {
			mlog.Debugm("error writing response", mlog.Map{"err": err, "req": httpReqToMlogMap(req)})
		}
		return
	}

	mlog.Printm("error writing response", mlog.Map{"err": err, "req": httpReqToMlogMap(req)})
}

// NewWithFilter returns a new Server that hides every path for which
// hidden reports true: such paths are omitted from listings and answered
// as not found.
func NewWithFilter(pc Config, hidden PathFilter) (*Server, error) {
	resolver, err := NewResolver(pc.Root, hidden)
	if err != nil {
		return nil, err
	}

	return &Server{
		config:   &pc,
		resolver: resolver,
		hidden:   hidden,
	}, nil
}

// New returns a new Server. Returns an error if the root is not a usable
// directory.
func New(pc Config) (*Server, error) {
	return NewWithFilter(pc, nil)
}

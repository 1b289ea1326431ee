// Copyright (c) 2012-2024 Eli Janssen
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package dirserve

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrNotDirectory is returned when the configured root is not a directory.
var ErrNotDirectory = errors.New("root is not a directory")

// Kind classifies the result of resolving a requested path.
type Kind int

const (
	// Missing is a path that does not exist, could not be inspected, or is
	// neither a directory nor a regular file.
	Missing Kind = iota
	// Rejected is a path whose canonical form lies outside the root, or
	// that matches a hide rule.
	Rejected
	// Directory is a contained directory.
	Directory
	// File is a contained regular file.
	File
)

func (k Kind) String() string {
	switch k {
	case Missing:
		return "missing"
	case Rejected:
		return "rejected"
	case Directory:
		return "directory"
	case File:
		return "file"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ResolvedPath is the per request result of Resolve.
type ResolvedPath struct {
	Kind Kind
	// Path is the canonical absolute filesystem path. Only set for
	// Directory and File.
	Path string
	// Rel is Path relative to the root, slash separated. Empty for the
	// root itself.
	Rel string
}

// The PathFilter type reports whether a slash separated, root relative
// path is hidden. *pathtrie.Matcher satisfies it.
type PathFilter interface {
	CheckPath(string) bool
}

// A Resolver maps untrusted request paths onto a fixed root directory.
// It holds no mutable state and is safe for concurrent use.
type Resolver struct {
	root string
	// root with a trailing separator, for segment aware prefix checks
	rootPrefix string
	hidden     PathFilter
}

// NewResolver returns a Resolver for root. The root is made absolute and
// canonicalized once; it must be an existing directory.
func NewResolver(root string, hidden PathFilter) (*Resolver, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("could not make root absolute: %w", err)
	}

	canon, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("could not canonicalize root: %w", err)
	}

	fi, err := os.Stat(canon)
	if err != nil {
		return nil, fmt.Errorf("could not stat root: %w", err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("%s: %w", canon, ErrNotDirectory)
	}

	prefix := canon
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}

	return &Resolver{
		root:       canon,
		rootPrefix: prefix,
		hidden:     hidden,
	}, nil
}

// Root returns the canonical root directory.
func (r *Resolver) Root() string {
	return r.root
}

// contains reports whether the absolute, clean path p is the root or lies
// below it on a path segment boundary.
func (r *Resolver) contains(p string) bool {
	return p == r.root || strings.HasPrefix(p, r.rootPrefix)
}

func (r *Resolver) rel(p string) string {
	if p == r.root {
		return ""
	}
	return filepath.ToSlash(strings.TrimPrefix(p, r.rootPrefix))
}

func (r *Resolver) isHidden(rels ...string) bool {
	if r.hidden == nil {
		return false
	}
	for _, rel := range rels {
		if rel != "" && r.hidden.CheckPath(rel) {
			return true
		}
	}
	return false
}

// Resolve classifies the slash separated requested path. A leading slash is
// relative to the root. The joined path is canonicalized (symbolic links
// followed, `.` and `..` resolved) before the containment check, so a link
// inside the root that points outside of it is Rejected.
func (r *Resolver) Resolve(requested string) ResolvedPath {
	requested = strings.TrimLeft(requested, "/")

	joined := r.root
	if requested != "" {
		// no cleaning here. EvalSymlinks resolves `..` after following links
		joined = r.root + string(filepath.Separator) + filepath.FromSlash(requested)
	}

	canon, err := filepath.EvalSymlinks(joined)
	if err != nil {
		// could not canonicalize. classify an obvious lexical escape as such,
		// everything else is simply missing.
		if !r.contains(filepath.Clean(joined)) {
			return ResolvedPath{Kind: Rejected}
		}
		return ResolvedPath{Kind: Missing}
	}

	if !filepath.IsAbs(canon) || !r.contains(canon) {
		return ResolvedPath{Kind: Rejected}
	}

	rel := r.rel(canon)
	reqRel := strings.TrimPrefix(path.Clean("/"+requested), "/")
	if r.isHidden(rel, reqRel) {
		return ResolvedPath{Kind: Rejected}
	}

	fi, err := os.Stat(canon)
	if err != nil {
		return ResolvedPath{Kind: Missing}
	}

	switch mode := fi.Mode(); {
	case mode.IsDir():
		return ResolvedPath{Kind: Directory, Path: canon, Rel: rel}
	case mode.IsRegular():
		return ResolvedPath{Kind: File, Path: canon, Rel: rel}
	default:
		return ResolvedPath{Kind: Missing}
	}
}

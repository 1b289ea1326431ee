// Copyright (c) 2012-2024 Eli Janssen
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package dirserve

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"os"
	"path"
	"sort"
	"strings"
)

const parentLinkText = ".. (parent directory)"

// entry names and the directory path are attacker influenced; html/template
// escapes them by context (element text vs href attribute).
var listingTemplate = template.Must(template.New("listing").Parse(
	`<h1>{{.Dir}}</h1><p>` +
		`{{with .Parent}}<a href="{{.Href}}">{{.Name}}</a><br>{{end}}` +
		`{{range $i, $e := .Entries}}{{if $i}}<br>{{end}}<a href="{{$e.Href}}">{{$e.Name}}</a>{{end}}` +
		`</p>`,
))

type listingLink struct {
	Name string
	Href string
}

type listingData struct {
	Dir     string
	Parent  *listingLink
	Entries []listingLink
}

// routeHref returns the escaped dispatcher route for the slash separated,
// root relative path p.
func routeHref(p string, isDir bool) string {
	p = path.Join("/", p)
	if isDir && p != "/" {
		p += "/"
	}
	u := url.URL{Path: p}
	return u.EscapedPath()
}

// cleanRelPath normalizes a root relative path for link building. The
// empty string denotes the root.
func cleanRelPath(p string) string {
	return strings.TrimPrefix(path.Clean("/"+p), "/")
}

// RenderListing renders an HTML fragment listing the entries of dir.
// rel is the canonical root relative path of dir (ResolvedPath.Rel); links
// point at rel/<entry>, and a parent link is emitted unless rel denotes the
// root. The parent link is not validated here, the next request is resolved
// like any other.
//
// Entries for which hidden reports true, under rel or under any of the
// aliases dir was reached through, are omitted. hidden may be nil.
func RenderListing(dir, rel string, hidden PathFilter, aliases ...string) ([]byte, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("could not list directory: %w", err)
	}

	// os.ReadDir sorts by filename already; keep the ordering explicit
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	rel = cleanRelPath(rel)
	prefixes := []string{rel}
	for _, a := range aliases {
		if a = cleanRelPath(a); a != rel {
			prefixes = append(prefixes, a)
		}
	}

	data := listingData{
		Dir:     dir,
		Entries: make([]listingLink, 0, len(entries)),
	}

	if rel != "" {
		parent := path.Dir(rel)
		if parent == "." {
			parent = ""
		}
		data.Parent = &listingLink{
			Name: parentLinkText,
			Href: routeHref(parent, true),
		}
	}

	for _, e := range entries {
		name := e.Name()
		if isHiddenEntry(hidden, prefixes, name) {
			continue
		}
		data.Entries = append(data.Entries, listingLink{
			Name: name,
			Href: routeHref(path.Join(rel, name), e.IsDir()),
		})
	}

	var buf bytes.Buffer
	if err := listingTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("could not render listing: %w", err)
	}
	return buf.Bytes(), nil
}

func isHiddenEntry(hidden PathFilter, prefixes []string, name string) bool {
	if hidden == nil {
		return false
	}
	for _, p := range prefixes {
		if hidden.CheckPath(path.Join(p, name)) {
			return true
		}
	}
	return false
}

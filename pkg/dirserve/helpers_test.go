// Copyright (c) 2012-2024 Eli Janssen
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package dirserve

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

// testTree lays out:
//
//	base/
//	  outside.txt
//	  data-other/secret.txt
//	  data/                    <- root
//	    hello.json
//	    index.html
//	    README                 (no extension, text)
//	    blob                   (no extension, png bytes)
//	    <script>
//	    .git/config
//	    sub/nested.json
//	    sub/deeper/
//	    escape -> ../data-other
//	    escape.txt -> ../outside.txt
//	    inner -> sub
type testTree struct {
	base string
	root string
}

func makeTestTree(t *testing.T) testTree {
	t.Helper()

	base := t.TempDir()
	root := filepath.Join(base, "data")

	mkdir := func(p string) {
		t.Helper()
		assert.NilError(t, os.MkdirAll(filepath.Join(base, p), 0o755))
	}
	write := func(p string, b []byte) {
		t.Helper()
		assert.NilError(t, os.WriteFile(filepath.Join(base, p), b, 0o644))
	}
	symlink := func(target, p string) {
		t.Helper()
		assert.NilError(t, os.Symlink(target, filepath.Join(base, p)))
	}

	mkdir("data-other")
	mkdir("data/sub/deeper")
	mkdir("data/.git")

	write("outside.txt", []byte("outside\n"))
	write("data-other/secret.txt", []byte("secret\n"))
	write("data/hello.json", []byte(`{"hello": "world"}`))
	write("data/index.html", []byte("<html><body>hi</body></html>"))
	write("data/README", []byte("just some plain text\n"))
	write("data/blob", pngHeader)
	write("data/<script>", []byte("x"))
	write("data/.git/config", []byte("[core]\n"))
	write("data/sub/nested.json", []byte(`[]`))

	symlink("../data-other", "data/escape")
	symlink("../outside.txt", "data/escape.txt")
	symlink("sub", "data/inner")

	return testTree{base: base, root: root}
}

func processRequest(t *testing.T, handler http.Handler, method, target string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	record := httptest.NewRecorder()
	handler.ServeHTTP(record, req)
	return record.Result()
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	assert.NilError(t, err)
	return string(body)
}

func bodyAssert(t *testing.T, expected string, resp *http.Response) {
	t.Helper()
	bodyString := readBody(t, resp)
	assert.Check(t, is.Equal(expected, bodyString),
		"Expected response body '%s' but got '%s' instead",
		expected, bodyString,
	)
}

func headerAssert(t *testing.T, expected, name string, resp *http.Response) {
	t.Helper()
	assert.Check(t,
		is.Equal(expected, resp.Header.Get(name)),
		"Expected response header mismatch",
	)
}

func statusCodeAssert(t *testing.T, expected int, resp *http.Response) {
	t.Helper()
	assert.Check(t,
		is.Equal(expected, resp.StatusCode),
		"Expected %d but got '%d' instead",
		expected, resp.StatusCode,
	)
}

func notFoundAssert(t *testing.T, resp *http.Response) {
	t.Helper()
	statusCodeAssert(t, http.StatusNotFound, resp)
	bodyAssert(t, "404 Not Found\n", resp)
}

type link struct {
	Href string
	Text string
}

type parsedListing struct {
	Heading string
	Links   []link
	// element names seen anywhere in the fragment
	Elements map[string]int
}

func parseListing(t *testing.T, body []byte) parsedListing {
	t.Helper()

	nodes, err := html.ParseFragment(bytes.NewReader(body), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	assert.NilError(t, err)

	pl := parsedListing{Elements: make(map[string]int)}

	var text func(n *html.Node) string
	text = func(n *html.Node) string {
		var sb strings.Builder
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				sb.WriteString(c.Data)
			} else {
				sb.WriteString(text(c))
			}
		}
		return sb.String()
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			pl.Elements[n.Data]++
			switch n.Data {
			case "h1":
				pl.Heading = text(n)
			case "a":
				l := link{Text: text(n)}
				for _, a := range n.Attr {
					if a.Key == "href" {
						l.Href = a.Val
					}
				}
				pl.Links = append(pl.Links, l)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return pl
}

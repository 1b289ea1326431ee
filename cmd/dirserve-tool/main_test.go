// Copyright (c) 2012-2024 Eli Janssen
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cactus/go-dirserve/pkg/dirserve"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func TestWriteResolved(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	root := filepath.Join(base, "data")
	assert.NilError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))
	assert.NilError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("a"), 0o644))
	assert.NilError(t, os.WriteFile(filepath.Join(base, "outside"), []byte("o"), 0o644))

	resolver, err := dirserve.NewResolver(root, nil)
	assert.NilError(t, err)

	var buf bytes.Buffer
	err = writeResolved(&buf, resolver, []string{"a.txt", "sub", "nope", "../outside"})
	assert.NilError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Assert(t, is.Len(lines, 4))
	assert.Check(t, strings.HasPrefix(lines[0], "file "))
	assert.Check(t, is.Contains(lines[0], filepath.Join(resolver.Root(), "a.txt")))
	assert.Check(t, strings.HasPrefix(lines[1], "directory "))
	assert.Check(t, strings.HasPrefix(lines[2], "missing "))
	assert.Check(t, strings.HasPrefix(lines[3], "rejected "))
	assert.Check(t, strings.HasSuffix(lines[3], "\t-"))
}

func TestCLIMatcher(t *testing.T) {
	t.Parallel()

	cli := &CLI{}
	m, err := cli.matcher()
	assert.NilError(t, err)
	assert.Check(t, m == nil)

	rules := filepath.Join(t.TempDir(), "hide.rules")
	assert.NilError(t, os.WriteFile(rules, []byte("# c\n||private/*\n"), 0o644))

	cli = &CLI{HideRules: rules, Hide: []string{".git"}}
	m, err = cli.matcher()
	assert.NilError(t, err)
	assert.Check(t, m.CheckPath(".git/HEAD"))
	assert.Check(t, m.CheckPath("private/x"))
	assert.Check(t, !m.CheckPath("public/x"))

	cli = &CLI{HideRules: filepath.Join(filepath.Dir(rules), "nope")}
	_, err = cli.matcher()
	assert.Check(t, is.ErrorContains(err, "could not open hide-rules file"))

	cli = &CLI{Hide: []string{"a/../b"}}
	_, err = cli.matcher()
	assert.Check(t, err != nil)
}

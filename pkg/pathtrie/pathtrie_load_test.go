// Copyright (c) 2012-2024 Eli Janssen
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package pathtrie

import (
	"os"
	"path/filepath"
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func TestLoadRulesFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	fname := filepath.Join(dir, "hide.rules")
	content := "# comment\n\n.git\n  |i|**/.DS_Store  \n||private/*\n"
	assert.NilError(t, os.WriteFile(fname, []byte(content), 0o644))

	rules, err := LoadRulesFile(fname)
	assert.NilError(t, err)
	assert.Check(t, is.DeepEqual([]string{".git", "|i|**/.DS_Store", "||private/*"}, rules))

	m := MustNewMatcherWithRules(rules)
	assert.Check(t, m.CheckPath(".git/config"))
	assert.Check(t, m.CheckPath("a/b/.ds_store"))
	assert.Check(t, m.CheckPath("private/a"))

	_, err = LoadRulesFile(filepath.Join(dir, "nope"))
	assert.Check(t, is.ErrorContains(err, "could not open hide-rules file"))
}

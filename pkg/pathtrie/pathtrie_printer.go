// Copyright (c) 2012-2024 Eli Janssen
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package pathtrie

import (
	"sort"
	"strings"

	"github.com/xlab/treeprint"
)

func (n *node) printTree(stree treeprint.Tree) {
	meta := make([]string, 0)
	if n.isGlob {
		meta = append(meta, "glob")
	}
	if n.anyDepth != nil || len(n.globs) > 0 {
		meta = append(meta, "glob-child")
	}
	if n.canMatch {
		meta = append(meta, "$")
	}
	if len(meta) > 0 {
		stree.SetMetaValue(strings.Join(meta, ","))
	}

	// map iteration order is random; sort for stable output
	keys := make([]string, 0, len(n.subtrees))
	for k := range n.subtrees {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		n.subtrees[k].printTree(stree.AddBranch(k))
	}
	for _, g := range n.globs {
		g.printTree(stree.AddBranch(g.pathPart))
	}
	if n.anyDepth != nil {
		n.anyDepth.printTree(stree.AddBranch(doubleStar))
	}
}

// RenderTree returns a printable representation of the rule tries.
func (m *Matcher) RenderTree() string {
	tree := treeprint.New()

	c := tree.AddBranch("case")
	m.csNode.printTree(c)
	i := tree.AddBranch("icase")
	m.ciNode.printTree(i)
	return tree.String()
}

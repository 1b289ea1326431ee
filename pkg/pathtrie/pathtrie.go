// Copyright (c) 2012-2024 Eli Janssen
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package pathtrie provides a path segment trie used to match slash separated
// relative paths against a set of glob rules.
package pathtrie

import (
	"fmt"
	"path"
	"strings"
)

const doubleStar = "**"

type node struct {
	// literal segment children
	subtrees map[string]*node
	// segment children containing glob metacharacters, tried in insertion order
	globs []*node
	// `**` child, consumes zero or more segments
	anyDepth *node
	// segment pattern for this node. mostly for debugging
	pathPart string
	isGlob   bool
	// a rule terminates at this node. any path with this node as a prefix
	// is a match
	canMatch bool
}

func newNode(part string) *node {
	return &node{
		subtrees: make(map[string]*node),
		pathPart: part,
	}
}

func (n *node) getOrNewSubTree(part string) *node {
	if part == doubleStar {
		if n.anyDepth == nil {
			n.anyDepth = newNode(part)
			n.anyDepth.isGlob = true
		}
		return n.anyDepth
	}

	if isGlobSegment(part) {
		for _, g := range n.globs {
			if g.pathPart == part {
				return g
			}
		}
		g := newNode(part)
		g.isGlob = true
		n.globs = append(n.globs, g)
		return g
	}

	subn, ok := n.subtrees[part]
	if !ok {
		subn = newNode(part)
		n.subtrees[part] = subn
	}
	return subn
}

func (n *node) walkBranch(parts []string, index int) bool {
	curnode := n
	for i := index; i < len(parts); i++ {
		if curnode.canMatch {
			return true
		}

		if curnode.anyDepth != nil {
			// `**` may swallow anything from zero segments up to all
			// remaining segments
			for j := i; j <= len(parts); j++ {
				if curnode.anyDepth.walkBranch(parts, j) {
					return true
				}
			}
		}

		part := parts[i]
		for _, g := range curnode.globs {
			if ok, _ := path.Match(g.pathPart, part); ok && g.walkBranch(parts, i+1) {
				return true
			}
		}

		v, ok := curnode.subtrees[part]
		if !ok {
			return false
		}
		curnode = v
	}

	// a trailing `**` also matches the (empty) remainder
	if curnode.anyDepth != nil && curnode.anyDepth.canMatch {
		return true
	}
	return curnode.canMatch
}

func isGlobSegment(s string) bool {
	return strings.ContainsAny(s, `*?[\`)
}

// Matcher holds case sensitive and case insensitive rule tries.
// A Matcher is safe for concurrent reads once all rules are added.
type Matcher struct {
	csNode   *node
	ciNode   *node
	hasRules bool
}

func (m *Matcher) parseRule(rule string) (string, string, error) {
	rule = strings.TrimSpace(rule)
	// bare patterns have no flags
	if !strings.HasPrefix(rule, "|") {
		return "", rule, nil
	}

	rule = strings.TrimRight(rule, "|")
	if strings.Count(rule, "|") != 2 {
		return "", "", fmt.Errorf("bad rule format: %s", rule)
	}

	ruleset := make([]strings.Builder, 2)
	index := 0
	// start after first `|`
	for _, r := range rule[1:] {
		if r == '|' {
			index++
			continue
		}
		ruleset[index].WriteRune(r)
	}
	return strings.TrimSpace(ruleset[0].String()), strings.TrimSpace(ruleset[1].String()), nil
}

// AddRule adds a rule to the Matcher.
//
// Expected format is `|flags|pattern` or a bare `pattern`. The only flag is
// `i` (case insensitive). Patterns are slash separated; each segment is
// either a literal, a path.Match glob, or `**` which matches any number of
// segments. A rule matches a path and everything below it.
func (m *Matcher) AddRule(rule string) error {
	if m == nil || m.csNode == nil || m.ciNode == nil {
		return fmt.Errorf("got uninitialized <m> in receiver")
	}

	flags, pattern, err := m.parseRule(rule)
	if err != nil {
		return err
	}

	parts := splitPath(pattern)
	if len(parts) == 0 {
		return fmt.Errorf("bad rule: empty pattern")
	}

	icase := strings.Contains(flags, "i")
	curnode := m.csNode
	if icase {
		curnode = m.ciNode
	}

	for _, part := range parts {
		if part == ".." {
			return fmt.Errorf("bad rule: parent reference in %q", pattern)
		}
		if _, err := path.Match(part, ""); err != nil {
			return fmt.Errorf("bad rule %q: %w", pattern, err)
		}
		if icase {
			part = strings.ToLower(part)
		}
		curnode = curnode.getOrNewSubTree(part)
	}

	curnode.canMatch = true
	m.hasRules = true
	return nil
}

// HasRules reports whether any rule has been added.
func (m *Matcher) HasRules() bool {
	return m != nil && m.hasRules
}

// CheckPath returns true if the slash separated relative path, or any of
// its ancestors, matches a rule. The empty path (the root) never matches.
func (m *Matcher) CheckPath(p string) bool {
	if !m.HasRules() {
		return false
	}

	parts := splitPath(p)
	if len(parts) == 0 {
		return false
	}

	if m.csNode.walkBranch(parts, 0) {
		return true
	}

	for i := range parts {
		parts[i] = strings.ToLower(parts[i])
	}
	return m.ciNode.walkBranch(parts, 0)
}

func splitPath(p string) []string {
	raw := strings.Split(p, "/")
	parts := make([]string, 0, len(raw))
	for _, s := range raw {
		if s == "" || s == "." {
			continue
		}
		parts = append(parts, s)
	}
	return parts
}

// NewMatcher returns an empty Matcher.
func NewMatcher() *Matcher {
	return &Matcher{
		csNode: newNode(""),
		ciNode: newNode(""),
	}
}

// MustNewMatcherWithRules returns a Matcher with the supplied rules added.
// It panics on a bad rule.
func MustNewMatcherWithRules(rules []string) *Matcher {
	m := NewMatcher()
	for _, rule := range rules {
		if err := m.AddRule(rule); err != nil {
			panic(err)
		}
	}
	return m
}

// Copyright (c) 2012-2024 Eli Janssen
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/cactus/go-dirserve/pkg/pathtrie"
	"github.com/cactus/mlog"
)

// buildHideMatcher returns nil when there are no rules, so the server does
// no per request matching at all.
func buildHideMatcher(rules []string) (*pathtrie.Matcher, error) {
	if len(rules) == 0 {
		return nil, nil
	}

	m := pathtrie.NewMatcher()
	for _, rule := range rules {
		if err := m.AddRule(rule); err != nil {
			return nil, fmt.Errorf("error building hide ruleset: %w", err)
		}
	}

	if mlog.HasDebug() {
		mlog.Debugm("loaded hide rules", mlog.Map{"count": len(rules)})
	}
	return m, nil
}

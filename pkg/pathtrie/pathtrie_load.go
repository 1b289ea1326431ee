// Copyright (c) 2012-2024 Eli Janssen
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package pathtrie

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadRulesFile reads one rule per line from fname. Blank lines and lines
// starting with `#` are ignored. The rules are returned unparsed.
func LoadRulesFile(fname string) ([]string, error) {
	// #nosec
	file, err := os.Open(fname)
	if err != nil {
		return nil, fmt.Errorf("could not open hide-rules file: %w", err)
	}
	// #nosec
	defer file.Close()

	rules := make([]string, 0)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rules = append(rules, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading hide-rules file: %w", err)
	}
	return rules, nil
}

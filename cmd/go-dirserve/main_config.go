// Copyright (c) 2012-2024 Eli Janssen
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// fileConfig is the optional TOML config file. Command line values take
// precedence over anything set here.
//
//	root   = "/srv/data"
//	listen = "127.0.0.1:8080"
//	hide   = [".git", "|i|**/.DS_Store"]
//
//	[headers]
//	Cache-Control = "no-store"
type fileConfig struct {
	Root    string            `toml:"root"`
	Listen  string            `toml:"listen"`
	Hide    []string          `toml:"hide"`
	Headers map[string]string `toml:"headers"`
}

func loadConfigFile(fname string) (*fileConfig, error) {
	fc := &fileConfig{}
	md, err := toml.DecodeFile(fname, fc)
	if err != nil {
		return nil, fmt.Errorf("could not parse config file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown keys in config file: %v", undecoded)
	}
	return fc, nil
}

// merge fills unset command line values from the config file. Headers are
// merged separately, see prepare.
func (cli *CLI) merge(fc *fileConfig) {
	if fc == nil {
		return
	}
	if cli.Root == "" {
		cli.Root = fc.Root
	}
	if cli.BindAddress == "" {
		cli.BindAddress = fc.Listen
	}
	// file rules first, so command line rule files add to them
	cli.hideRules = append(append([]string{}, fc.Hide...), cli.hideRules...)
}

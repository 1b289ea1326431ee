// Copyright (c) 2012-2024 Eli Janssen
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// dirserve-tool
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cactus/go-dirserve/pkg/dirserve"
	"github.com/cactus/go-dirserve/pkg/pathtrie"

	"github.com/alecthomas/kong"
)

// ServerVersion holds the server version string
var ServerVersion = "no-version"

// ResolveCmd holds command options for the resolve command
type ResolveCmd struct {
	Root  string   `arg:"" name:"ROOT" type:"existingdir" help:"Directory that would be served"`
	Paths []string `arg:"" name:"PATH" help:"Request paths to resolve"`
}

// Run runs the resolve command
func (cmd *ResolveCmd) Run(cli *CLI) error {
	hidden, err := cli.matcher()
	if err != nil {
		return err
	}

	var filter dirserve.PathFilter
	if hidden != nil {
		filter = hidden
	}

	resolver, err := dirserve.NewResolver(cmd.Root, filter)
	if err != nil {
		return err
	}

	return writeResolved(os.Stdout, resolver, cmd.Paths)
}

func writeResolved(w io.Writer, resolver *dirserve.Resolver, paths []string) error {
	for _, p := range paths {
		rp := resolver.Resolve(p)
		target := rp.Path
		if target == "" {
			target = "-"
		}
		if _, err := fmt.Fprintf(w, "%-9s %s\t%s\n", rp.Kind, p, target); err != nil {
			return err
		}
	}
	return nil
}

// RulesCmd holds command options for the rules command
type RulesCmd struct {
	Paths []string `arg:"" optional:"" name:"PATH" help:"Root relative paths to check against the rules"`
}

// Run runs the rules command
func (cmd *RulesCmd) Run(cli *CLI) error {
	hidden, err := cli.matcher()
	if err != nil {
		return err
	}
	if hidden == nil {
		return errors.New("no hide rules provided")
	}

	if len(cmd.Paths) == 0 {
		fmt.Println(hidden.RenderTree())
		return nil
	}

	for _, p := range cmd.Paths {
		state := "visible"
		if hidden.CheckPath(p) {
			state = "hidden"
		}
		fmt.Printf("%-7s %s\n", state, p)
	}
	return nil
}

type CLI struct {
	// global options
	Version   kong.VersionFlag `name:"version" short:"V" help:"Print version information and quit"`
	HideRules string           `name:"hide-rules" type:"existingfile" help:"Text file of hide rules (one per line)"`
	Hide      []string         `name:"hide" help:"Hide rule. This option can be used multiple times"`

	// subcommands
	Resolve ResolveCmd `cmd:"" aliases:"res" help:"Resolve request paths against a root and print the result"`
	Rules   RulesCmd   `cmd:"" help:"Print the hide rule tree, or check paths against it"`
}

func (cli *CLI) matcher() (*pathtrie.Matcher, error) {
	rules := append([]string{}, cli.Hide...)
	if cli.HideRules != "" {
		fileRules, err := pathtrie.LoadRulesFile(cli.HideRules)
		if err != nil {
			return nil, err
		}
		rules = append(rules, fileRules...)
	}

	if len(rules) == 0 {
		return nil, nil
	}

	m := pathtrie.NewMatcher()
	for _, rule := range rules {
		if err := m.AddRule(rule); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// #nosec G104
func main() {
	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("dirserve-tool"),
		kong.Description("Check how go-dirserve would resolve request paths, without starting a server"),
		kong.UsageOnError(),
		kong.Vars{"version": ServerVersion},
	)
	err := ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}

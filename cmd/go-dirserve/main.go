// Copyright (c) 2012-2024 Eli Janssen
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// go-dirserve daemon
package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cactus/go-dirserve/pkg/dirserve"
	"github.com/cactus/go-dirserve/pkg/pathtrie"
	"github.com/cactus/go-dirserve/pkg/router"
	"github.com/cactus/go-dirserve/pkg/stats"

	"github.com/alecthomas/kong"
	"github.com/cactus/mlog"
	"github.com/prometheus/client_golang/prometheus"
	versioncollector "github.com/prometheus/client_golang/prometheus/collectors/version"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/version"
	"github.com/quic-go/quic-go/http3"
	"go.uber.org/automaxprocs/maxprocs"
)

const defaultBindAddress = "0.0.0.0:8080"

var (
	// ServerName holds the server name string
	ServerName = "go-dirserve"
	// ServerVersion holds the server version string
	ServerVersion = "no-version"
)

// CLI holds the command line options
type CLI struct {
	Root              string           `arg:"" optional:"" name:"ROOT" help:"Directory to serve (default: env DIRSERVE_ROOT)"`
	Config            string           `name:"config" short:"c" type:"existingfile" help:"TOML config file. Command line options take precedence"`
	AddHeaders        []string         `name:"header" short:"H" help:"Extra header to return for each response. This option can be used multiple times to add multiple headers"`
	HideRulesFile     string           `name:"hide-rules" type:"existingfile" help:"Text file of hide rules (one per line). Matching paths are not listed and not served"`
	BindAddress       string           `name:"listen" help:"Address:Port to bind to for HTTP (default: ${default_listen})"`
	BindAddressSSL    string           `name:"ssl-listen" help:"Address:Port to bind to for HTTPS/SSL/TLS"`
	SSLKey            string           `name:"ssl-key" type:"existingfile" help:"ssl private key (key.pem) path"`
	SSLCert           string           `name:"ssl-cert" type:"existingfile" help:"ssl cert (cert.pem) path"`
	EnableQuic        bool             `name:"quic" help:"Enable http3/quic. Binds to the same port number as ssl-listen but udp+quic"`
	ServerName        string           `name:"server-name" default:"${server_name}" help:"Value to use for the HTTP server field"`
	Stats             bool             `name:"stats" help:"Enable stats collection and the /status endpoint"`
	Metrics           bool             `name:"metrics" help:"Enable Prometheus compatible metrics endpoint at /metrics"`
	DisableKeepAlives bool             `name:"no-fk" help:"Disable frontend http keep-alive support"`
	NoLogTS           bool             `name:"no-log-ts" help:"Do not add a timestamp to logging"`
	LogJSON           bool             `name:"log-json" help:"Log in JSON format"`
	DumpRules         bool             `name:"dump-rules" help:"Print the parsed hide rules as a tree and exit"`
	Verbose           bool             `name:"verbose" short:"v" help:"Show verbose (debug) log level output"`
	Version           kong.VersionFlag `name:"version" short:"V" help:"Print version information and quit"`

	// resolved by prepare
	hideRules []string
	headers   map[string]string
}

func defaultHeaders() map[string]string {
	return map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"Content-Security-Policy": "default-src 'none'; img-src 'self'; media-src 'self'; style-src 'unsafe-inline'",
	}
}

// parseHeader splits a `Name: value` header option.
func parseHeader(v string) (string, string, bool) {
	s := strings.SplitN(v, ":", 2)
	if len(s) != 2 {
		return "", "", false
	}

	s0 := strings.TrimSpace(s[0])
	s1 := strings.TrimSpace(s[1])
	if len(s0) == 0 || len(s1) == 0 {
		return "", "", false
	}
	return s0, s1, true
}

// prepare merges the config file into the command line options, loads hide
// rules and validates the result.
func (cli *CLI) prepare() error {
	var fc *fileConfig
	if cli.Config != "" {
		var err error
		fc, err = loadConfigFile(cli.Config)
		if err != nil {
			return err
		}
	}

	if cli.HideRulesFile != "" {
		rules, err := pathtrie.LoadRulesFile(cli.HideRulesFile)
		if err != nil {
			return err
		}
		cli.hideRules = rules
	}

	if cli.Root == "" {
		cli.Root = os.Getenv("DIRSERVE_ROOT")
	}
	cli.merge(fc)

	// defaults, then config file, then command line
	cli.headers = defaultHeaders()
	if fc != nil {
		for k, v := range fc.Headers {
			cli.headers[k] = v
		}
	}
	for _, v := range cli.AddHeaders {
		k, hv, ok := parseHeader(v)
		if !ok {
			mlog.Printf("ignoring bad header: '%s'", v)
			continue
		}
		cli.headers[k] = hv
	}

	if cli.BindAddress == "" && cli.BindAddressSSL == "" {
		cli.BindAddress = defaultBindAddress
	}

	if cli.Root == "" && !cli.DumpRules {
		return errors.New("root directory required")
	}
	if cli.BindAddressSSL != "" && cli.SSLKey == "" {
		return errors.New("ssl-key is required when specifying ssl-listen")
	}
	if cli.BindAddressSSL != "" && cli.SSLCert == "" {
		return errors.New("ssl-cert is required when specifying ssl-listen")
	}
	if cli.EnableQuic && cli.BindAddressSSL == "" {
		return errors.New("ssl-listen is required when specifying quic")
	}
	return nil
}

// newRouter builds the file server and the router in front of it.
func newRouter(cli *CLI, hidden *pathtrie.Matcher) (*router.DumbRouter, error) {
	config := dirserve.Config{
		Root:              cli.Root,
		DisableKeepAlives: cli.DisableKeepAlives,
	}

	// avoid handing a typed nil to the server
	var filter dirserve.PathFilter
	if hidden != nil {
		filter = hidden
	}

	srv, err := dirserve.NewWithFilter(config, filter)
	if err != nil {
		return nil, fmt.Errorf("error creating file server: %w", err)
	}

	dumbrouter := &router.DumbRouter{
		ServerName:  cli.ServerName,
		AddHeaders:  cli.headers,
		FileHandler: srv,
	}

	if cli.Stats {
		ss := &stats.ServeStats{}
		srv.SetMetricsCollector(ss)
		mlog.Printf("Enabling stats at %s", router.StatusPath)
		dumbrouter.StatsHandler = stats.Handler(ss)
	}

	if cli.Metrics {
		mlog.Printf("Enabling metrics at %s", router.MetricsPath)
		dumbrouter.MetricsHandler = promhttp.Handler()
	}

	mlog.Printm("serving directory", mlog.Map{"root": srv.Resolver().Root()})
	return dumbrouter, nil
}

// configureLogging sets up the standard logger from the command line
// options.
func configureLogging(cli *CLI) {
	mlog.SetFlags(mlog.Lstd)
	if cli.NoLogTS {
		mlog.SetFlags(mlog.Flags() ^ mlog.Ltimestamp)
	}

	if cli.LogJSON {
		mlog.SetEmitter(&mlog.FormatWriterJSON{})
	}

	if cli.Verbose {
		mlog.SetFlags(mlog.Flags() | mlog.Ldebug)
		mlog.Debug("debug logging enabled")
	}
}

func main() {
	version.Version = ServerVersion

	cli := &CLI{}
	_ = kong.Parse(cli,
		kong.Name(ServerName),
		kong.Description("A read-only http file server confined to a single directory"),
		kong.UsageOnError(),
		kong.Vars{
			"version":        version.Print(ServerName),
			"server_name":    ServerName,
			"default_listen": defaultBindAddress,
		},
	)

	// start out with a very bare logger that only prints
	// the message (no special format or log elements)
	mlog.SetFlags(0)

	if err := cli.prepare(); err != nil {
		mlog.Fatal(err)
	}

	// now configure a standard logger
	configureLogging(cli)

	// after logging is configured, so rule loading is visible with -v
	hidden, err := buildHideMatcher(cli.hideRules)
	if err != nil {
		mlog.Fatal(err)
	}

	if cli.DumpRules {
		if hidden == nil {
			fmt.Println("no hide rules")
		} else {
			fmt.Println(hidden.RenderTree())
		}
		os.Exit(0)
	}

	if _, err := maxprocs.Set(maxprocs.Logger(mlog.Debugf)); err != nil {
		mlog.Printf("could not set GOMAXPROCS: %s", err)
	}

	if cli.Metrics {
		prometheus.MustRegister(versioncollector.NewCollector(dirserve.MetricNamespace))
	}

	dumbrouter, err := newRouter(cli, hidden)
	if err != nil {
		mlog.Fatal(err)
	}

	// the router is the handler directly. http.ServeMux would clean `..`
	// paths and answer with redirects.
	if cli.BindAddress != "" {
		mlog.Printf("Starting server on: %s", cli.BindAddress)
		go func() {
			srv := &http.Server{
				Addr:              cli.BindAddress,
				Handler:           dumbrouter,
				ReadTimeout:       30 * time.Second,
				ReadHeaderTimeout: 10 * time.Second,
			}
			mlog.Fatal(srv.ListenAndServe())
		}()
	}

	if cli.BindAddressSSL != "" {
		var tlsHandler http.Handler = dumbrouter

		if cli.EnableQuic {
			h3srv := &http3.Server{
				Addr:    cli.BindAddressSSL,
				Handler: dumbrouter,
			}
			// advertise http3 on the tcp tls listener
			tlsHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if err := h3srv.SetQUICHeaders(w.Header()); err != nil && mlog.HasDebug() {
					mlog.Debugm("could not set quic headers", mlog.Map{"err": err})
				}
				dumbrouter.ServeHTTP(w, r)
			})

			mlog.Printf("Starting HTTP/3 (quic) server on: %s", cli.BindAddressSSL)
			go func() {
				mlog.Fatal(h3srv.ListenAndServeTLS(cli.SSLCert, cli.SSLKey))
			}()
		}

		mlog.Printf("Starting TLS server on: %s", cli.BindAddressSSL)
		go func() {
			srv := &http.Server{
				Addr:              cli.BindAddressSSL,
				Handler:           tlsHandler,
				ReadTimeout:       30 * time.Second,
				ReadHeaderTimeout: 10 * time.Second,
			}
			mlog.Fatal(srv.ListenAndServeTLS(cli.SSLCert, cli.SSLKey))
		}()
	}

	// just block. listen and serve will exit the program if they fail/return
	// so we just need to block to prevent main from exiting.
	select {}
}

// Command uri parses, builds and edits URI references.
//
// Usage:
//
//	uri [options] <command> [arguments]
//
// Commands:
//
//	parse [-o text|yaml] URI...    print the components of each URI
//	build [flags]                  build a URI from components
//	set-path URI PATH              replace the path of URI
//	update-query URI NAME=VALUE... set query parameters of URI
//	demo                           replay the reference datasets
//
// Settings are read from URI_LOG_FORMAT, URI_LOG_LEVEL and URI_PORTS,
// optionally via .env files, and can be overridden with options.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ghettovoice/uribuilder/internal/config"
	"github.com/ghettovoice/uribuilder/internal/harness"
	"github.com/ghettovoice/uribuilder/internal/log"
	"github.com/ghettovoice/uribuilder/query"
	"github.com/ghettovoice/uribuilder/schemeport"
	"github.com/ghettovoice/uribuilder/uri"
)

// ExitError is an error that carries the process exit code.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string { return e.Message }

func usageErr(format string, args ...any) error {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, args...)}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			stop()
			os.Exit(exitErr.Code) //nolint:gocritic
		}
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1) //nolint:gocritic
	}
}

type app struct {
	out   io.Writer
	log   *slog.Logger
	ports *schemeport.Table
}

func run(ctx context.Context, out, errOut io.Writer, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("uri", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.Usage = func() {
		fmt.Fprint(errOut, `
uri - parse, build and edit URI references.

Usage:
  uri [options] <command> [arguments]

Commands:
  parse [-o text|yaml] URI...     print the components of each URI
  build [flags]                   build a URI from components
  set-path URI PATH               replace the path of URI
  update-query URI NAME=VALUE...  set query parameters of URI
  demo                            replay the reference datasets

Options:
`)
		fs.PrintDefaults()
	}
	logFormat := fs.String("log-format", string(cfg.LogFormat), "Log output format: console, dev, json or noop.")
	logLevel := fs.String("log-level", cfg.LogLevel, "Log level: debug, info, warn or error.")
	ports := fs.String("ports", cfg.Ports, "Default port table: default, wellknown or a YAML file path.")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return usageErr("%v", err)
	}
	cfg.LogFormat, cfg.LogLevel, cfg.Ports = log.Format(strings.ToLower(*logFormat)), *logLevel, *ports

	logger, err := log.New(errOut, cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return usageErr("%v", err)
	}
	tbl, err := cfg.PortTable()
	if err != nil {
		return usageErr("ports: %v", err)
	}

	a := &app{out: out, log: logger, ports: tbl}
	cmd, rest := fs.Arg(0), fs.Args()
	if len(rest) > 0 {
		rest = rest[1:]
	}
	logger.Debug("command started", "command", cmd, "args", rest, "ports", cfg.Ports)

	switch cmd {
	case "parse":
		return a.parse(rest)
	case "build":
		return a.build(rest)
	case "set-path":
		return a.setPath(rest)
	case "update-query":
		return a.updateQuery(rest)
	case "demo":
		return a.demo(ctx)
	case "":
		fs.Usage()
		return usageErr("no command given")
	default:
		return usageErr("unknown command %q", cmd)
	}
}

func (a *app) parseURI(s string) (*uri.URI, error) {
	u, err := uri.Parse(s)
	if err != nil {
		a.log.Debug("parse failed", "input", s, "error", err)
		return nil, fmt.Errorf("parse %q: %w", s, err)
	}
	a.log.Debug("parsed", "uri", u, "query", &u.Query, "fields", log.FmtValue(u, false))
	return u, nil
}

func (a *app) parse(args []string) error {
	fs := flag.NewFlagSet("parse", flag.ContinueOnError)
	fs.SetOutput(a.out)
	output := fs.String("o", "text", "Output format: text or yaml.")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return usageErr("%v", err)
	}
	if fs.NArg() == 0 {
		return usageErr("parse: at least one URI is required")
	}

	switch *output {
	case "text", "yaml":
	default:
		return usageErr("parse: unknown output format %q", *output)
	}

	var enc *yaml.Encoder
	if *output == "yaml" {
		enc = yaml.NewEncoder(a.out)
		enc.SetIndent(2)
		defer enc.Close()
	}

	for _, s := range fs.Args() {
		u, err := a.parseURI(s)
		if err != nil {
			return err
		}
		if enc != nil {
			if err := enc.Encode(u); err != nil {
				return fmt.Errorf("encode %q: %w", s, err)
			}
			continue
		}
		a.printText(u)
	}
	return nil
}

func (a *app) printText(u *uri.URI) {
	fmt.Fprintf(a.out, "uri:       %s\n", u)
	fmt.Fprintf(a.out, "scheme:    %s\n", u.Scheme)
	if !u.User.IsZero() {
		fmt.Fprintf(a.out, "user:      %s\n", u.User.Username())
		if pwd, ok := u.User.Password(); ok {
			fmt.Fprintf(a.out, "password:  %s\n", pwd)
		}
	}
	fmt.Fprintf(a.out, "host:      %s\n", u.Host)
	if _, ok := u.ExplicitPort(); ok || !u.IsRelative() {
		fmt.Fprintf(a.out, "port:      %d", u.PortWith(a.ports))
		if !ok {
			fmt.Fprint(a.out, " (default)")
		}
		fmt.Fprintln(a.out)
	}
	fmt.Fprintf(a.out, "path:      %q\n", u.Path)
	for k, v := range u.Query.All() {
		fmt.Fprintf(a.out, "query:     %s = %q (%s)\n", k, v, v.Kind())
	}
	if u.Fragment != "" {
		fmt.Fprintf(a.out, "fragment:  %s\n", u.Fragment)
	}
}

type queryFlag []string

func (f *queryFlag) String() string { return strings.Join(*f, "&") }

func (f *queryFlag) Set(s string) error {
	*f = append(*f, s)
	return nil
}

func parsePairs(pairs []string) (query.Values, error) {
	for _, p := range pairs {
		if !strings.Contains(p, "=") {
			return query.Values{}, usageErr("query parameter %q: want NAME=VALUE", p)
		}
	}
	q, err := query.Parse(strings.Join(pairs, "&"))
	if err != nil {
		return query.Values{}, usageErr("query: %v", err)
	}
	return q, nil
}

func (a *app) build(args []string) error {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	fs.SetOutput(a.out)
	scheme := fs.String("scheme", "http", "URI scheme, \".\" for a relative reference.")
	user := fs.String("user", "", "User name.")
	password := fs.String("password", "", "Password, requires -user.")
	host := fs.String("host", "", "Host.")
	port := fs.Uint("port", 0, "Explicit port, 0 means none.")
	path := fs.String("path", "", "Path, e.g. /home/index.")
	fragment := fs.String("fragment", "", "Fragment.")
	var qs queryFlag
	fs.Var(&qs, "q", "Query parameter NAME=VALUE, may be repeated.")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return usageErr("%v", err)
	}
	if *port > 0xFFFF {
		return usageErr("build: port %d out of range", *port)
	}

	u := uri.New().
		SetScheme(*scheme).
		SetHost(*host).
		SetPath(*path).
		SetFragment(*fragment)
	switch {
	case *password != "" && *user == "":
		return usageErr("build: -password requires -user")
	case *password != "":
		u.SetAuthority(uri.UserPassword(*user, *password))
	case *user != "":
		u.SetAuthority(uri.User(*user))
	}
	if *port > 0 {
		u.SetPort(uint16(*port))
	}
	q, err := parsePairs(qs)
	if err != nil {
		return err
	}
	u.Query = q

	if !u.IsValid() {
		a.log.Warn("built URI is not valid", "uri", u)
	}
	fmt.Fprintln(a.out, u)
	return nil
}

func (a *app) setPath(args []string) error {
	if len(args) != 2 {
		return usageErr("set-path: want URI PATH")
	}
	u, err := a.parseURI(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, u.SetPath(args[1]))
	return nil
}

func (a *app) updateQuery(args []string) error {
	if len(args) < 2 {
		return usageErr("update-query: want URI NAME=VALUE...")
	}
	q, err := parsePairs(args[1:])
	if err != nil {
		return err
	}
	s, err := uri.UpdateQuery(args[0], q)
	if err != nil {
		return fmt.Errorf("update query of %q: %w", args[0], err)
	}
	a.log.Debug("query updated", "input", log.StringValue(args[0]), "query", &q)
	fmt.Fprintln(a.out, s)
	return nil
}

func (a *app) demo(ctx context.Context) error {
	res, err := harness.New(a.log, a.ports).Run(ctx)
	var passed int
	for _, r := range res {
		status := "PASS"
		if r.Passed() {
			passed++
		} else {
			status = "FAIL"
		}
		fmt.Fprintf(a.out, "%s  %-13s  %s\n", status, r.Suite, r.Input)
	}
	fmt.Fprintf(a.out, "%d/%d passed\n", passed, len(res))
	return err
}

// Package config loads the command line tool settings from the environment.
//
// Settings come from environment variables; values missing there are taken from
// .env files, so the process environment always wins:
//
//	URI_LOG_FORMAT  console | dev | json | noop (default console)
//	URI_LOG_LEVEL   debug | info | warn | error (default info)
//	URI_PORTS       default | wellknown | path to a YAML port table (default "default")
package config

//go:generate go tool errtrace -w .

import (
	"errors"
	"io/fs"
	"os"

	"braces.dev/errtrace"
	"github.com/joho/godotenv"

	"github.com/ghettovoice/uribuilder/internal/errorutil"
	"github.com/ghettovoice/uribuilder/internal/log"
	"github.com/ghettovoice/uribuilder/internal/util"
	"github.com/ghettovoice/uribuilder/schemeport"
)

const (
	EnvLogFormat = "URI_LOG_FORMAT"
	EnvLogLevel  = "URI_LOG_LEVEL"
	EnvPorts     = "URI_PORTS"
)

const (
	PortsDefault   = "default"
	PortsWellKnown = "wellknown"
)

// DefaultFiles are the .env files read by [Load] when no files are given.
// Missing default files are skipped.
var DefaultFiles = []string{".env", ".env.local"}

// Config holds the tool settings.
type Config struct {
	LogFormat log.Format
	LogLevel  string
	// Ports selects the default port table: [PortsDefault], [PortsWellKnown] or a YAML file path.
	Ports string
}

// Load reads the settings from the environment and the given .env files.
// Files given explicitly must exist, later files override earlier ones.
func Load(files ...string) (Config, error) {
	dotenv, err := readFiles(files)
	if err != nil {
		return Config{}, errtrace.Wrap(err)
	}

	lookup := func(key, def string) string {
		if v, ok := os.LookupEnv(key); ok && util.TrimSP(v) != "" {
			return util.TrimSP(v)
		}
		if v, ok := dotenv[key]; ok && util.TrimSP(v) != "" {
			return util.TrimSP(v)
		}
		return def
	}

	cfg := Config{
		LogFormat: log.Format(util.LCase(lookup(EnvLogFormat, string(log.FormatConsole)))),
		LogLevel:  lookup(EnvLogLevel, "info"),
		Ports:     lookup(EnvPorts, PortsDefault),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errtrace.Wrap(err)
	}
	return cfg, nil
}

func readFiles(files []string) (map[string]string, error) {
	if len(files) == 0 {
		for _, f := range DefaultFiles {
			if _, err := os.Stat(f); err == nil {
				files = append(files, f)
			} else if !errors.Is(err, fs.ErrNotExist) {
				return nil, errtrace.Wrap(err)
			}
		}
		if len(files) == 0 {
			return nil, nil
		}
	}

	env := make(map[string]string)
	for _, f := range files {
		m, err := godotenv.Read(f)
		if err != nil {
			return nil, errtrace.Wrap(errorutil.NewInvalidArgumentError(err))
		}
		for k, v := range m {
			env[k] = v
		}
	}
	return env, nil
}

// Validate checks the log format.
func (c Config) Validate() error {
	switch c.LogFormat {
	case log.FormatConsole, log.FormatDev, log.FormatJSON, log.FormatNoop:
		return nil
	default:
		return errtrace.Wrap(errorutil.NewInvalidArgumentError("%s: unknown log format %q", EnvLogFormat, c.LogFormat))
	}
}

// PortTable returns the port table selected by [Config.Ports].
func (c Config) PortTable() (*schemeport.Table, error) {
	switch util.LCase(c.Ports) {
	case "", PortsDefault:
		return schemeport.Default(), nil
	case PortsWellKnown:
		return schemeport.WellKnown(), nil
	default:
		return errtrace.Wrap2(schemeport.LoadFile(c.Ports))
	}
}

// Package log provides logging utilities.
package log

//go:generate go tool errtrace -w .

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"braces.dev/errtrace"
	"github.com/golang-cz/devslog"
	"github.com/phsym/console-slog"
	slogformatter "github.com/samber/slog-formatter"

	"github.com/ghettovoice/uribuilder/internal/constraints"
	"github.com/ghettovoice/uribuilder/internal/errorutil"
	"github.com/ghettovoice/uribuilder/query"
	"github.com/ghettovoice/uribuilder/uri"
)

var newHandler = slogformatter.NewFormatterHandler(
	slogformatter.ErrorFormatter("error"),
	slogformatter.FormatByType(func(u *uri.URI) slog.Value {
		if u == nil {
			return slog.StringValue("<nil>")
		}
		return slog.GroupValue(
			slog.String("uri", u.String()),
			slog.String("scheme", u.Scheme),
			slog.String("host", u.Host),
			slog.Any("port", u.Port()),
		)
	}),
	slogformatter.FormatByType(func(q *query.Values) slog.Value {
		attrs := make([]slog.Attr, 0, q.Len())
		for k, v := range q.All() {
			attrs = append(attrs, slog.Any(k, v.Any()))
		}
		return slog.GroupValue(attrs...)
	}),
)

// Format is a logger output format.
type Format string

const (
	FormatConsole Format = "console"
	FormatDev     Format = "dev"
	FormatJSON    Format = "json"
	FormatNoop    Format = "noop"
)

// New creates a logger writing to w in the given format.
// Level is one of "debug", "info", "warn", "error" (case-insensitive), empty means "info".
func New(w io.Writer, format Format, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, errtrace.Wrap(errorutil.NewInvalidArgumentError("log level %q: %v", level, err))
		}
	}

	switch format {
	case FormatConsole, "":
		return slog.New(newHandler(
			console.NewHandler(w, &console.HandlerOptions{
				Level:      lvl,
				TimeFormat: time.RFC3339Nano,
			}),
		)), nil
	case FormatDev:
		return slog.New(newHandler(
			devslog.NewHandler(w, &devslog.Options{
				HandlerOptions: &slog.HandlerOptions{
					AddSource: true,
					Level:     lvl,
				},
				SortKeys:   true,
				TimeFormat: time.RFC3339Nano,
			}),
		)), nil
	case FormatJSON:
		return slog.New(newHandler(
			slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}),
		)), nil
	case FormatNoop:
		return Noop, nil
	default:
		return nil, errtrace.Wrap(errorutil.NewInvalidArgumentError("unknown log format %q", format))
	}
}

type noopHandler struct{}

func (noopHandler) Enabled(context.Context, slog.Level) bool { return false }

func (noopHandler) Handle(context.Context, slog.Record) error { return nil }

func (h noopHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h noopHandler) WithGroup(string) slog.Handler { return h }

// Noop is a noop logger.
var Noop = slog.New(noopHandler{})

type fmtValue struct {
	v        any
	goSyntax bool
}

func (v fmtValue) LogValue() slog.Value {
	if v.goSyntax {
		return slog.StringValue(fmt.Sprintf("%#v", v.v))
	}
	return slog.StringValue(fmt.Sprintf("%+v", v.v))
}

// FmtValue returns a value logger that formats values using '%+v' or '%#v' syntax.
func FmtValue(v any, goSyntax bool) slog.LogValuer { return fmtValue{v, goSyntax} }

type stringValue[T constraints.Byteseq] struct {
	v T
}

func (v stringValue[T]) LogValue() slog.Value {
	return slog.StringValue(string(v.v))
}

// StringValue returns a value logger that formats v as string.
func StringValue[T constraints.Byteseq](v T) slog.LogValuer { return stringValue[T]{v} }

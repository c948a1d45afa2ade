// Package schemeport maps URI schemes to their default ports.
//
// Tables are plain configuration: a mapping from scheme to port plus a fallback port
// for schemes the table does not know. Two tables are embedded, see [Default] and [WellKnown];
// custom ones are loaded from YAML:
//
//	fallback: 80
//	schemes:
//	  http: 80
//	  https: 443
package schemeport

//go:generate go tool errtrace -w .
//go:generate go tool mockgen -destination=schemeportmock/lookup.go -package=schemeportmock . Lookup

import (
	"bytes"
	"embed"
	"errors"
	"io"
	"maps"
	"os"
	"slices"

	"braces.dev/errtrace"
	"gopkg.in/yaml.v3"

	"github.com/ghettovoice/uribuilder/internal/errorutil"
	"github.com/ghettovoice/uribuilder/internal/util"
)

// Lookup resolves the default port of a scheme.
// Implementations return a fallback port for unknown schemes.
type Lookup interface {
	Port(scheme string) uint16
}

// Table is an immutable scheme-to-port [Lookup].
// Scheme names are case-insensitive.
type Table struct {
	ports    map[string]uint16
	fallback uint16
}

// NewTable creates a table from the given mapping and fallback port.
func NewTable(ports map[string]uint16, fallback uint16) *Table {
	t := &Table{ports: make(map[string]uint16, len(ports)), fallback: fallback}
	for s, p := range ports {
		t.ports[util.LCase(s)] = p
	}
	return t
}

// Lookup returns the port registered for the scheme.
func (t *Table) Lookup(scheme string) (uint16, bool) {
	p, ok := t.ports[util.LCase(scheme)]
	return p, ok
}

// Port returns the port registered for the scheme or the fallback port.
func (t *Table) Port(scheme string) uint16 {
	if p, ok := t.Lookup(scheme); ok {
		return p
	}
	return t.fallback
}

// Fallback returns the port used for unknown schemes.
func (t *Table) Fallback() uint16 { return t.fallback }

// Schemes returns the known schemes in sorted order.
func (t *Table) Schemes() []string { return slices.Sorted(maps.Keys(t.ports)) }

// MarshalYAML implements [yaml.Marshaler].
func (t *Table) MarshalYAML() (any, error) {
	return tableDoc{Fallback: t.fallback, Schemes: t.ports}, nil
}

type tableDoc struct {
	Fallback uint16            `yaml:"fallback"`
	Schemes  map[string]uint16 `yaml:"schemes"`
}

// LoadYAML reads a table from YAML.
// Unknown fields, empty scheme names and zero ports are rejected with [errorutil.ErrInvalidArgument].
func LoadYAML(r io.Reader) (*Table, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc tableDoc
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, errtrace.Wrap(errorutil.NewInvalidArgumentError(err))
	}
	if doc.Fallback == 0 {
		return nil, errtrace.Wrap(errorutil.NewInvalidArgumentError("port table: fallback port is not set"))
	}
	for s, p := range doc.Schemes {
		if util.TrimSP(s) == "" {
			return nil, errtrace.Wrap(errorutil.NewInvalidArgumentError("port table: empty scheme name"))
		}
		if p == 0 {
			return nil, errtrace.Wrap(errorutil.NewInvalidArgumentError("port table: zero port for scheme %q", s))
		}
	}
	return NewTable(doc.Schemes, doc.Fallback), nil
}

// LoadFile reads a table from a YAML file.
func LoadFile(name string) (*Table, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}
	defer f.Close()
	return errtrace.Wrap2(LoadYAML(f))
}

//go:embed tables/*.yaml
var tablesFS embed.FS

func mustLoadEmbedded(name string) *Table {
	data := util.Must2(tablesFS.ReadFile("tables/" + name))
	return util.Must2(LoadYAML(bytes.NewReader(data)))
}

var (
	defTable       = mustLoadEmbedded("default.yaml")
	wellKnownTable = mustLoadEmbedded("wellknown.yaml")
)

// Default returns the table used by URIs without an explicit port.
// It only knows "http" (80) and falls back to 80 for every other scheme.
func Default() *Table { return defTable }

// WellKnown returns a table of IANA registered default ports (https is 443, ftp is 21 and so on)
// with fallback port 80.
func WellKnown() *Table { return wellKnownTable }

package query

//go:generate go tool errtrace -w .

import (
	"fmt"
	"io"
	"iter"
	"maps"
	"slices"
	"strconv"
	"strings"

	"braces.dev/errtrace"

	"github.com/ghettovoice/uribuilder/internal/constraints"
	"github.com/ghettovoice/uribuilder/internal/errorutil"
	"github.com/ghettovoice/uribuilder/internal/grammar"
	"github.com/ghettovoice/uribuilder/internal/ioutil"
	"github.com/ghettovoice/uribuilder/internal/types"
	"github.com/ghettovoice/uribuilder/internal/util"
)

// RenderOptions contains options for rendering queries.
type RenderOptions = types.RenderOptions

const (
	ErrEmptyInput     = grammar.ErrEmptyInput
	ErrMalformedInput = grammar.ErrMalformedInput
)

var (
	_ types.Renderer  = (*Values)(nil)
	_ types.Equalable = (*Values)(nil)
)

// Values is an ordered mapping from parameter name to [Value].
//
// Names are case-sensitive and unique, the order of first insertion is kept
// and drives rendering. A present name always has at least one value.
// The zero Values is an empty query ready to use.
type Values struct {
	keys []string
	vals map[string]Value
}

// New returns a query with the given name/value pairs set in order.
func New(kvs ...Pair) Values {
	var q Values
	for _, kv := range kvs {
		q.Set(kv.Name, kv.Value)
	}
	return q
}

// Pair is a single name/value pair.
type Pair struct {
	Name  string
	Value Value
}

// P is a shorthand for Pair{name, v}.
func P(name string, v Value) Pair { return Pair{name, v} }

// Len returns the number of distinct names.
func (q *Values) Len() int {
	if q == nil {
		return 0
	}
	return len(q.keys)
}

// IsZero reports whether the query has no parameters.
func (q *Values) IsZero() bool { return q.Len() == 0 }

// Keys returns the parameter names in order.
func (q *Values) Keys() []string {
	if q == nil {
		return nil
	}
	return slices.Clone(q.keys)
}

// Has reports whether the parameter is set.
func (q *Values) Has(name string) bool {
	if q == nil {
		return false
	}
	_, ok := q.vals[name]
	return ok
}

// Get returns the value of the parameter.
func (q *Values) Get(name string) (Value, bool) {
	if q == nil {
		return Value{}, false
	}
	v, ok := q.vals[name]
	return v, ok
}

// Set sets the parameter to v.
// An existing parameter keeps its position, a new one goes last.
// Setting an invalid value (zero or empty sequence) deletes the parameter.
func (q *Values) Set(name string, v Value) *Values {
	if !v.IsValid() {
		return q.Del(name)
	}
	if q.vals == nil {
		q.vals = make(map[string]Value)
	}
	if _, ok := q.vals[name]; !ok {
		q.keys = append(q.keys, name)
	}
	q.vals[name] = v.Clone()
	return q
}

// Append adds v to the parameter.
// A repeated parameter becomes a sequence in arrival order, its position does not change.
func (q *Values) Append(name string, v Value) *Values {
	if !v.IsValid() {
		return q
	}
	cur, ok := q.Get(name)
	if !ok {
		return q.Set(name, v)
	}
	q.vals[name] = cur.with(v)
	return q
}

// Del removes the parameter with all of its values.
func (q *Values) Del(name string) *Values {
	if !q.Has(name) {
		return q
	}
	delete(q.vals, name)
	q.keys = slices.DeleteFunc(q.keys, func(k string) bool { return k == name })
	return q
}

// DelAt removes the i-th value of the parameter.
// The parameter is removed when no values are left.
func (q *Values) DelAt(name string, i int) *Values {
	cur, ok := q.Get(name)
	if !ok {
		return q
	}
	if rest, ok := cur.without(i); ok {
		q.vals[name] = rest
		return q
	}
	return q.Del(name)
}

// Clear removes all parameters.
func (q *Values) Clear() *Values {
	if q == nil {
		return q
	}
	q.keys = q.keys[:0]
	clear(q.vals)
	return q
}

// All iterates over the parameters in order.
func (q *Values) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if q == nil {
			return
		}
		for _, k := range q.keys {
			if !yield(k, q.vals[k]) {
				return
			}
		}
	}
}

// Map returns the query as a map of native values, see [Value.Any].
func (q *Values) Map() map[string]any {
	m := make(map[string]any, q.Len())
	for k, v := range q.All() {
		m[k] = v.Any()
	}
	return m
}

// Clone returns a deep copy of the query.
func (q *Values) Clone() Values {
	if q.IsZero() {
		return Values{}
	}
	q2 := Values{
		keys: slices.Clone(q.keys),
		vals: maps.Clone(q.vals),
	}
	for k, v := range q2.vals {
		q2.vals[k] = v.Clone()
	}
	return q2
}

// Equal compares the query with another one, accepting Values and *Values.
// Names, values and their order must match.
func (q *Values) Equal(val any) bool {
	var other *Values
	switch v := val.(type) {
	case Values:
		other = &v
	case *Values:
		other = v
	default:
		return false
	}

	if q.Len() != other.Len() {
		return false
	}
	for i, k := range q.Keys() {
		if other.keys[i] != k {
			return false
		}
		if !q.vals[k].Equal(other.vals[k]) {
			return false
		}
	}
	return true
}

func shouldEscapeQueryChar(c byte) bool { return !grammar.IsQueryCharUnreserved(c) }

// RenderTo writes "?" followed by the encoded pairs.
// Nothing is written for an empty query.
func (q *Values) RenderTo(w io.Writer, _ *RenderOptions) (num int, err error) {
	if q.IsZero() {
		return 0, nil
	}

	cw := ioutil.GetCountingWriter(w)
	defer ioutil.FreeCountingWriter(cw)
	cw.WriteString("?") //nolint:errcheck
	cw.Call(q.renderPairs)
	return errtrace.Wrap2(cw.Result())
}

func (q *Values) renderPairs(w io.Writer) (num int, err error) {
	cw := ioutil.GetCountingWriter(w)
	defer ioutil.FreeCountingWriter(cw)

	var i int
	for _, k := range q.keys {
		name := grammar.Escape(k, shouldEscapeQueryChar)
		for _, v := range q.vals[k].scalars() {
			if i > 0 {
				cw.WriteString("&") //nolint:errcheck
			}
			cw.WriteString(name, "=", grammar.Escape(v.String(), shouldEscapeQueryChar)) //nolint:errcheck
			i++
		}
	}
	return errtrace.Wrap2(cw.Result())
}

// Render returns the query with the leading "?", or an empty string for an empty query.
func (q *Values) Render(opts *RenderOptions) string {
	if q.IsZero() {
		return ""
	}
	sb := util.GetStringBuilder()
	defer util.FreeStringBuilder(sb)
	q.RenderTo(sb, opts) //nolint:errcheck
	return sb.String()
}

// String returns the string representation of the query.
func (q *Values) String() string { return q.Render(nil) }

// Encode returns the encoded pairs without the leading "?".
func (q *Values) Encode() string { return strings.TrimPrefix(q.Render(nil), "?") }

// Format implements fmt.Formatter.
func (q *Values) Format(f fmt.State, verb rune) {
	switch verb {
	case 's':
		fmt.Fprint(f, q.String())
	case 'q':
		fmt.Fprint(f, strconv.Quote(q.String()))
	default:
		fmt.Fprint(f, "{")
		var i int
		for k, v := range q.All() {
			if i > 0 {
				fmt.Fprint(f, " ")
			}
			fmt.Fprintf(f, "%s:", k)
			v.Format(f, verb)
			i++
		}
		fmt.Fprint(f, "}")
	}
}

// MarshalText implements [encoding.TextMarshaler].
func (q *Values) MarshalText() ([]byte, error) {
	return []byte(q.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (q *Values) UnmarshalText(text []byte) error {
	q1, err := Parse(text)
	if err != nil {
		*q = Values{}
		return errtrace.Wrap(err)
	}
	*q = q1
	return nil
}

// MarshalYAML renders the query as an ordered mapping of native values.
func (q *Values) MarshalYAML() (any, error) {
	type kv struct {
		Name  string `yaml:"name"`
		Value any    `yaml:"value"`
	}
	out := make([]kv, 0, q.Len())
	for k, v := range q.All() {
		out = append(out, kv{k, v.Any()})
	}
	return out, nil
}

// Parse parses a query from the given input s (string or []byte), with or without the leading "?".
//
// Pairs are separated by "&", names from values by the first "=".
// A pair without "=" gets an empty text value, empty pairs are skipped.
// Names and values are percent-decoded, values are coerced with [Coerce].
// Input containing "#" is rejected with [ErrMalformedInput].
func Parse[T constraints.Byteseq](s T) (Values, error) {
	str := strings.TrimPrefix(string(s), "?")
	if i := strings.IndexByte(str, '#'); i >= 0 {
		return Values{}, errtrace.Wrap(errorutil.NewWrapperError(ErrMalformedInput, "unexpected '#' at %d in query %q", i, string(s)))
	}

	var q Values
	for pair := range strings.SplitSeq(str, "&") {
		if pair == "" {
			continue
		}
		name, val, _ := strings.Cut(pair, "=")
		q.Append(grammar.Unescape(name), Coerce(grammar.Unescape(val)))
	}
	return q, nil
}

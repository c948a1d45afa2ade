package query

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"braces.dev/errtrace"

	"github.com/ghettovoice/uribuilder/internal/errorutil"
	"github.com/ghettovoice/uribuilder/internal/grammar"
)

// Kind is the kind of a query parameter [Value].
type Kind uint8

const (
	KindInvalid Kind = iota
	KindText
	KindNumber
	KindSeq
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindSeq:
		return "sequence"
	default:
		return "invalid"
	}
}

// Value is a query parameter value: a text, a number or a sequence of texts and numbers.
// The zero Value is invalid and is never stored in [Values].
type Value struct {
	kind Kind
	text string
	num  int64
	seq  []Value
}

// Text returns a text value.
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Number returns a number value.
func Number(n int64) Value { return Value{kind: KindNumber, num: n} }

// Seq returns a sequence of the given values.
// Nested sequences are flattened, invalid values are dropped.
func Seq(vals ...Value) Value {
	seq := make([]Value, 0, len(vals))
	for _, v := range vals {
		switch v.kind {
		case KindText, KindNumber:
			seq = append(seq, v)
		case KindSeq:
			seq = append(seq, v.seq...)
		}
	}
	return Value{kind: KindSeq, seq: seq}
}

// Coerce converts decoded parameter text into a value.
// Integer literals (optional sign, no redundant leading zeros, no spaces) become numbers,
// unless they overflow int64; everything else stays text.
func Coerce(s string) Value {
	if n, ok := grammar.ParseInt(s); ok {
		return Number(n)
	}
	return Text(s)
}

// Of converts a native Go value into a [Value].
// Accepted are Value, strings, integers and slices of those.
func Of(x any) (Value, error) {
	switch x := x.(type) {
	case Value:
		return x, nil
	case string:
		return Text(x), nil
	case int:
		return Number(int64(x)), nil
	case int32:
		return Number(int64(x)), nil
	case int64:
		return Number(x), nil
	case uint16:
		return Number(int64(x)), nil
	case []string:
		vals := make([]Value, len(x))
		for i, s := range x {
			vals[i] = Text(s)
		}
		return Seq(vals...), nil
	case []int:
		vals := make([]Value, len(x))
		for i, n := range x {
			vals[i] = Number(int64(n))
		}
		return Seq(vals...), nil
	case []int64:
		vals := make([]Value, len(x))
		for i, n := range x {
			vals[i] = Number(n)
		}
		return Seq(vals...), nil
	case []any:
		vals := make([]Value, len(x))
		for i, e := range x {
			v, err := Of(e)
			if err != nil {
				return Value{}, errtrace.Wrap(err)
			}
			if v.kind == KindSeq {
				return Value{}, errtrace.Wrap(errorutil.NewInvalidArgumentError("nested sequence at index %d", i))
			}
			vals[i] = v
		}
		return Seq(vals...), nil
	default:
		return Value{}, errtrace.Wrap(errorutil.NewInvalidArgumentError("unsupported query value type %T", x))
	}
}

// Kind returns the value kind.
func (v Value) Kind() Kind { return v.kind }

// IsZero reports whether v is the zero (invalid) value.
func (v Value) IsZero() bool { return v.kind == KindInvalid }

// IsValid reports whether v can be stored in [Values]:
// a scalar, or a sequence with at least one element.
func (v Value) IsValid() bool {
	switch v.kind {
	case KindText, KindNumber:
		return true
	case KindSeq:
		return len(v.seq) > 0
	default:
		return false
	}
}

// Text returns the text of a text value.
func (v Value) Text() (string, bool) { return v.text, v.kind == KindText }

// Number returns the number of a number value.
func (v Value) Number() (int64, bool) { return v.num, v.kind == KindNumber }

// Values returns the scalars of v: the value itself for scalars,
// a copy of the elements for sequences.
func (v Value) Values() []Value {
	switch v.kind {
	case KindText, KindNumber:
		return []Value{v}
	case KindSeq:
		return slices.Clone(v.seq)
	default:
		return nil
	}
}

func (v Value) scalars() []Value {
	if v.kind == KindSeq {
		return v.seq
	}
	if v.kind == KindInvalid {
		return nil
	}
	return []Value{v}
}

// Len returns the number of scalars in v.
func (v Value) Len() int { return len(v.scalars()) }

// with returns v extended by other, turning a scalar into a sequence.
// The elements of a sequence v are reused, so v must not be used afterwards.
func (v Value) with(other Value) Value {
	switch v.kind {
	case KindInvalid:
		return other
	case KindSeq:
		v.seq = append(v.seq, other.scalars()...)
		return v
	default:
		return Seq(v, other)
	}
}

// without returns v with the i-th scalar removed.
// It reports false when nothing is left.
func (v Value) without(i int) (Value, bool) {
	ss := v.scalars()
	if i < 0 || i >= len(ss) {
		return v, v.IsValid()
	}
	if v.kind != KindSeq {
		return Value{}, false
	}
	rest := slices.Delete(slices.Clone(ss), i, i+1)
	if len(rest) == 0 {
		return Value{}, false
	}
	return Value{kind: KindSeq, seq: rest}, true
}

// String returns the literal form of a scalar.
// Sequence elements are joined with ",".
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		return strconv.FormatInt(v.num, 10)
	case KindSeq:
		ss := make([]string, len(v.seq))
		for i, e := range v.seq {
			ss[i] = e.String()
		}
		return strings.Join(ss, ",")
	default:
		return ""
	}
}

// Format implements [fmt.Formatter].
// Verb %v prints scalars as their literal and sequences in brackets,
// %q quotes text values.
func (v Value) Format(f fmt.State, verb rune) {
	switch v.kind {
	case KindSeq:
		fmt.Fprint(f, "[")
		for i, e := range v.seq {
			if i > 0 {
				fmt.Fprint(f, " ")
			}
			e.Format(f, verb)
		}
		fmt.Fprint(f, "]")
	case KindText:
		if verb == 'q' {
			fmt.Fprint(f, strconv.Quote(v.text))
			return
		}
		fmt.Fprint(f, v.text)
	default:
		fmt.Fprint(f, v.String())
	}
}

// Any returns v as a native Go value: string, int64 or []any.
func (v Value) Any() any {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		return v.num
	case KindSeq:
		out := make([]any, len(v.seq))
		for i, e := range v.seq {
			out[i] = e.Any()
		}
		return out
	default:
		return nil
	}
}

// MarshalYAML renders the value as its native form.
func (v Value) MarshalYAML() (any, error) { return v.Any(), nil }

// Clone returns a deep copy of the value.
func (v Value) Clone() Value {
	v.seq = slices.Clone(v.seq)
	return v
}

// Equal reports whether v equals val, accepting Value and *Value.
// A text never equals a number, even when they render the same.
func (v Value) Equal(val any) bool {
	var other Value
	switch o := val.(type) {
	case Value:
		other = o
	case *Value:
		if o == nil {
			return false
		}
		other = *o
	default:
		return false
	}

	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindText:
		return v.text == other.text
	case KindNumber:
		return v.num == other.num
	case KindSeq:
		return slices.EqualFunc(v.seq, other.seq, func(a, b Value) bool { return a.Equal(b) })
	default:
		return true
	}
}

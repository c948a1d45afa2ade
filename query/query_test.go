package query_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ghettovoice/uribuilder/query"
)

func TestParse(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		in       string
		wantKeys []string
		wantMap  map[string]any
		wantErr  error
	}{
		{"empty", "", nil, map[string]any{}, nil},
		{"only mark", "?", nil, map[string]any{}, nil},
		{
			"two params",
			"search=helloworld&class=commom",
			[]string{"search", "class"},
			map[string]any{"search": "helloworld", "class": "commom"},
			nil,
		},
		{
			"repeated key",
			"search=helloworld&class=commom&class=typescript",
			[]string{"search", "class"},
			map[string]any{"search": "helloworld", "class": []any{"commom", "typescript"}},
			nil,
		},
		{
			"repeated key with number",
			"search=helloworld&class=commom&class=typescript&class=111",
			[]string{"search", "class"},
			map[string]any{"search": "helloworld", "class": []any{"commom", "typescript", int64(111)}},
			nil,
		},
		{
			"repeat keeps first position",
			"?a=1&b=2&a=3",
			[]string{"a", "b"},
			map[string]any{"a": []any{int64(1), int64(3)}, "b": int64(2)},
			nil,
		},
		{
			"percent-encoded utf-8",
			"v=TlzfSfc_ymI&%E4%B8%AD%E6%96%87=%E4%B8%AD%E6%96%87",
			[]string{"v", "中文"}, //nolint:gosmopolitan
			map[string]any{"v": "TlzfSfc_ymI", "中文": "中文"}, //nolint:gosmopolitan
			nil,
		},
		{
			"no value and empty pairs",
			"flag&&x=&y=a=b&",
			[]string{"flag", "x", "y"},
			map[string]any{"flag": "", "x": "", "y": "a=b"},
			nil,
		},
		{"fragment inside", "a=1#top", nil, map[string]any{}, query.ErrMalformedInput},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			got, err := query.Parse(c.in)
			if diff := cmp.Diff(err, c.wantErr, cmpopts.EquateErrors()); diff != "" {
				t.Fatalf("query.Parse(%q) error = %v, want %v\ndiff (-got +want):\n%v", c.in, err, c.wantErr, diff)
			}
			if diff := cmp.Diff(got.Keys(), c.wantKeys); diff != "" {
				t.Errorf("query.Parse(%q).Keys() = %q, want %q\ndiff (-got +want):\n%v", c.in, got.Keys(), c.wantKeys, diff)
			}
			if diff := cmp.Diff(got.Map(), c.wantMap); diff != "" {
				t.Errorf("query.Parse(%q).Map() = %v, want %v\ndiff (-got +want):\n%v", c.in, got.Map(), c.wantMap, diff)
			}
		})
	}
}

func TestParse_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, in := range []string{
		"?search=helloworld&class=commom",
		"?search=helloworld&class=commom&class=typescript",
		"?search=helloworld&class=commom&class=typescript&class=111",
		"?v=TlzfSfc_ymI&%E4%B8%AD%E6%96%87=%E4%B8%AD%E6%96%87",
		"?key=2&neg=-3&zero=0&pad=007",
		"?a=%3D%26%23%25&b=%2B",
		"?big=99999999999999999999",
	} {
		t.Run(in, func(t *testing.T) {
			t.Parallel()

			q, err := query.Parse(in)
			if err != nil {
				t.Fatalf("query.Parse(%q) error = %v, want nil", in, err)
			}
			if got := q.String(); got != in {
				t.Errorf("query.Parse(%q).String() = %q, want %q", in, got, in)
			}
			if got := q.Encode(); got != strings.TrimPrefix(in, "?") {
				t.Errorf("query.Parse(%q).Encode() = %q, want %q", in, got, strings.TrimPrefix(in, "?"))
			}
		})
	}
}

func TestParse_Normalization(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in, want string
	}{
		{"?a=%e4%b8%ad", "?a=%E4%B8%AD"},
		{"?%41=%42%43", "?A=BC"},
		{"?a=%7e%2d", "?a=~-"},
		{"?n=+5&z=-0", "?n=5&z=0"},
		{"a=1&&b=2&", "?a=1&b=2"},
		{"?flag", "?flag="},
		{"?a=%zz", "?a=%25zz"},
	}

	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			t.Parallel()

			q, err := query.Parse(c.in)
			if err != nil {
				t.Fatalf("query.Parse(%q) error = %v, want nil", c.in, err)
			}
			got := q.String()
			if got != c.want {
				t.Errorf("query.Parse(%q).String() = %q, want %q", c.in, got, c.want)
			}

			q2, err := query.Parse(got)
			if err != nil {
				t.Fatalf("query.Parse(%q) error = %v, want nil", got, err)
			}
			if !q2.Equal(q) {
				t.Errorf("query.Parse(%q) = %v, want %v", got, &q2, &q)
			}
		})
	}
}

func TestParse_LongInput(t *testing.T) {
	t.Parallel()

	const (
		n      = 100_000
		budget = 2 * time.Second
	)

	cases := []struct {
		name     string
		in       string
		wantKind query.Kind
		wantLen  int
	}{
		{"long digit value", "a=" + strings.Repeat("1", n), query.KindText, 1},
		{"long signed digit value", "a=-" + strings.Repeat("9", n), query.KindText, 1},
		{"long text value", "a=" + strings.Repeat("x", n), query.KindText, 1},
		{"long escaped value", "a=" + strings.Repeat("%E4", n/3), query.KindText, 1},
		{"many repeated params", strings.TrimSuffix(strings.Repeat("a=12&", n/5), "&"), query.KindSeq, n / 5},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			start := time.Now()
			q, err := query.Parse(c.in)
			if d := time.Since(start); d > budget {
				t.Errorf("query.Parse of %d bytes took %v, want under %v", len(c.in), d, budget)
			}
			if err != nil {
				t.Fatalf("query.Parse(%.32q) error = %v, want nil", c.in, err)
			}
			v, _ := q.Get("a")
			if v.Kind() != c.wantKind || v.Len() != c.wantLen {
				t.Errorf("a is %s of %d values, want %s of %d", v.Kind(), v.Len(), c.wantKind, c.wantLen)
			}
			if got := q.Encode(); got != c.in {
				t.Errorf("query.Parse(%.32q).Encode() differs from the input, len = %d, want %d", c.in, len(got), len(c.in))
			}
		})
	}
}

func BenchmarkParse(b *testing.B) {
	for _, n := range []int{1_000, 10_000, 100_000} {
		for _, bc := range []struct {
			name string
			in   string
		}{
			{"digits", "a=" + strings.Repeat("1", n)},
			{"repeated", strings.Repeat("a=1&", n/4)},
		} {
			b.Run(fmt.Sprintf("%s_%d", bc.name, n), func(b *testing.B) {
				b.SetBytes(int64(len(bc.in)))
				for range b.N {
					query.Parse(bc.in) //nolint:errcheck
				}
			})
		}
	}
}

func TestValues_Render(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		q    query.Values
		want string
	}{
		{"zero", query.Values{}, ""},
		{"scalar", query.New(query.P("action", query.Text("back"))), "?action=back"},
		{
			"sequence expands",
			query.New(
				query.P("v", query.Text("test")),
				query.P("a", query.Seq(query.Number(1), query.Number(2), query.Number(3), query.Number(4))),
			),
			"?v=test&a=1&a=2&a=3&a=4",
		},
		{
			"escaping",
			query.New(query.P("a b", query.Text("x=y&z")), query.P("q", query.Text("中"))), //nolint:gosmopolitan
			"?a%20b=x%3Dy%26z&q=%E4%B8%AD",
		},
		{"empty value", query.New(query.P("flag", query.Text(""))), "?flag="},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			if got := c.q.Render(nil); got != c.want {
				t.Errorf("q.Render(nil) = %q, want %q", got, c.want)
			}
		})
	}
}

func TestValues_Set(t *testing.T) {
	t.Parallel()

	q, _ := query.Parse("a=1&b=2&c=3")
	q.Set("b", query.Text("x"))
	q.Set("d", query.Number(4))

	if got, want := q.String(), "?a=1&b=x&c=3&d=4"; got != want {
		t.Errorf("q.String() = %q, want %q", got, want)
	}
	if v, _ := q.Get("b"); v.Kind() != query.KindText {
		t.Errorf("q.Get(\"b\").Kind() = %v, want %v", v.Kind(), query.KindText)
	}

	q.Set("a", query.Number(5))
	if v, _ := q.Get("a"); v.Kind() != query.KindNumber {
		t.Errorf("q.Set(\"a\", 5) made %v, want a number", v.Kind())
	}

	q.Set("c", query.Seq())
	if q.Has("c") {
		t.Error("q.Has(\"c\") = true after setting an empty sequence, want false")
	}
}

func TestValues_Clear(t *testing.T) {
	t.Parallel()

	q, _ := query.Parse("a=1&b=2&b=3")
	if got := q.Clear(); got != &q {
		t.Errorf("q.Clear() = %p, want %p", got, &q)
	}
	if !q.IsZero() || q.Has("b") {
		t.Errorf("q = %v after q.Clear(), want empty", &q)
	}
	q.Set("c", query.Text("x"))
	if got, want := q.String(), "?c=x"; got != want {
		t.Errorf("q.String() = %q, want %q", got, want)
	}

	var nilQ *query.Values
	if got := nilQ.Clear(); got != nil {
		t.Errorf("(*query.Values)(nil).Clear() = %v, want nil", got)
	}
}

func TestValues_Del(t *testing.T) {
	t.Parallel()

	q, _ := query.Parse("class=commom&class=typescript&id=1")
	q.Del("class")
	if q.Has("class") {
		t.Error("q.Has(\"class\") = true after q.Del, want false")
	}
	if got, want := q.String(), "?id=1"; got != want {
		t.Errorf("q.String() = %q, want %q", got, want)
	}

	q.Del("id")
	if !q.IsZero() {
		t.Errorf("q.IsZero() = false, want true; q = %v", &q)
	}
	if got := q.String(); got != "" {
		t.Errorf("q.String() = %q, want empty", got)
	}
	q.Del("missing")
}

func TestValues_DelAt(t *testing.T) {
	t.Parallel()

	q, _ := query.Parse("class=commom&class=typescript&class=111&id=1")

	q.DelAt("class", 1)
	if got, want := q.String(), "?class=commom&class=111&id=1"; got != want {
		t.Errorf("q.String() = %q, want %q", got, want)
	}
	q.DelAt("class", 5)
	q.DelAt("class", 0)
	q.DelAt("class", 0)
	if q.Has("class") {
		t.Errorf("q.Has(\"class\") = true after removing every value, want false")
	}

	q.DelAt("id", 0)
	if q.Has("id") {
		t.Errorf("q.Has(\"id\") = true after removing the sole value, want false")
	}
}

func TestValues_CloneAndEqual(t *testing.T) {
	t.Parallel()

	q, _ := query.Parse("a=1&b=x&b=y")
	q2 := q.Clone()
	if !q.Equal(q2) {
		t.Fatalf("q.Equal(q.Clone()) = false, want true")
	}

	q2.Set("a", query.Number(2))
	q2.DelAt("b", 0)
	if v, _ := q.Get("a"); !v.Equal(query.Number(1)) {
		t.Errorf("original changed after mutating the clone: a = %v", v)
	}
	if q.Equal(&q2) {
		t.Error("q.Equal(&q2) = true after mutation, want false")
	}

	reordered, _ := query.Parse("b=x&b=y&a=1")
	if q.Equal(reordered) {
		t.Error("q.Equal(reordered) = true, want false")
	}
	if q.Equal("a=1&b=x&b=y") {
		t.Error("q.Equal(string) = true, want false")
	}
}

func TestValues_All(t *testing.T) {
	t.Parallel()

	q, _ := query.Parse("x=1&y=2&z=3")
	var keys []string
	for k := range q.All() {
		keys = append(keys, k)
		if k == "y" {
			break
		}
	}
	if diff := cmp.Diff(keys, []string{"x", "y"}); diff != "" {
		t.Errorf("keys = %q, want [x y]\ndiff (-got +want):\n%v", keys, diff)
	}
}

func TestValues_RoundTripText(t *testing.T) {
	t.Parallel()

	q := query.New(query.P("id", query.Number(0)), query.P("name", query.Text("a&b")))
	text, err := q.MarshalText()
	if err != nil {
		t.Fatalf("q.MarshalText() error = %v, want nil", err)
	}
	var got query.Values
	if err := got.UnmarshalText(text); err != nil {
		t.Fatalf("got.UnmarshalText(%q) error = %v, want nil", text, err)
	}
	if !got.Equal(q) {
		t.Errorf("round-trip mismatch: got = %v, want %v", &got, &q)
	}

	if err := got.UnmarshalText([]byte("a#b")); err == nil {
		t.Error("got.UnmarshalText(\"a#b\") error = nil, want error")
	}
	if !got.IsZero() {
		t.Errorf("got.IsZero() = false after failed unmarshal, want true")
	}
}

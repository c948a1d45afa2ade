package uri

//go:generate go tool errtrace -w .

import (
	"fmt"
	"io"
	"net"
	"slices"
	"strconv"
	"strings"

	"braces.dev/errtrace"
	"github.com/miekg/dns"

	"github.com/ghettovoice/uribuilder/internal/constraints"
	"github.com/ghettovoice/uribuilder/internal/errorutil"
	"github.com/ghettovoice/uribuilder/internal/grammar"
	"github.com/ghettovoice/uribuilder/internal/ioutil"
	"github.com/ghettovoice/uribuilder/internal/types"
	"github.com/ghettovoice/uribuilder/internal/util"
	"github.com/ghettovoice/uribuilder/query"
	"github.com/ghettovoice/uribuilder/schemeport"
)

// RenderOptions contains options for rendering URIs.
type RenderOptions = types.RenderOptions

const (
	ErrEmptyInput     = grammar.ErrEmptyInput
	ErrMalformedInput = grammar.ErrMalformedInput
)

var (
	_ types.Renderer  = (*URI)(nil)
	_ types.Equalable = (*URI)(nil)
)

// Relative is the scheme marker of relative references such as "./a/b" or "/a/b".
const Relative = "."

// URI is a parsed URI reference.
//
// The zero URI is usable: fields may be assigned directly or through the chaining setters,
// and any combination of fields renders.
type URI struct {
	// Scheme is the URI scheme, or [Relative] for relative references.
	Scheme string
	// User holds the decoded userinfo of the authority.
	User UserInfo
	// Host is the authority host. Relative references keep the leading token here, e.g. ".".
	Host string
	// Path holds the raw path segments. Empty segments are significant:
	// ["a", ""] renders as "/a/" and [""] renders as "/".
	Path []string
	// Query holds the query parameters.
	Query query.Values
	// Fragment is the raw text after "#". An empty fragment is not rendered.
	Fragment string

	port    uint16
	hasPort bool
}

// New returns an empty URI.
func New() *URI { return new(URI) }

// IsURIShaped reports whether s starts with a "scheme://authority" prefix.
func IsURIShaped[T constraints.Byteseq](s T) bool { return grammar.IsURIShaped(s) }

// Parse parses a URI reference from the given input s (string or []byte).
//
// Accepted are absolute URIs "scheme://[user[:password]@]host[:port][/path][?query][#fragment]"
// and relative references starting with "." or "/". The fragment begins at the first "#",
// the query at the first "?" before it. Empty input fails with [ErrEmptyInput],
// everything else that does not fit fails with [ErrMalformedInput].
// Parse never returns a partially filled URI.
func Parse[T constraints.Byteseq](s T) (*URI, error) {
	c, err := grammar.Split(s)
	if err != nil {
		return nil, errtrace.Wrap(err)
	}

	u := new(URI)
	if c.Relative {
		u.Scheme = Relative
		u.Host = c.Lead
	} else {
		u.Scheme = c.Scheme
		if err := u.parseAuthority(c.Authority); err != nil {
			return nil, errtrace.Wrap(err)
		}
	}
	u.Path = grammar.SplitPath(c.Path)
	if c.HasQuery {
		if u.Query, err = query.Parse(c.Query); err != nil {
			return nil, errtrace.Wrap(err)
		}
	}
	u.Fragment = c.Fragment
	return u, nil
}

func (u *URI) parseAuthority(auth string) error {
	if usr, hostport, ok := strings.Cut(auth, "@"); ok {
		u.User = ParseUserInfo(usr)
		auth = hostport
	}

	host, port, ok := strings.Cut(auth, ":")
	u.Host = host
	if !ok || port == "" {
		return nil
	}
	p, err := strconv.ParseUint(port, 10, 16)
	if err != nil {
		return errtrace.Wrap(errorutil.NewWrapperError(ErrMalformedInput, "invalid port %q", port))
	}
	u.SetPort(uint16(p))
	return nil
}

// UpdateQuery parses s, sets every parameter of q over its query and renders the result.
// Existing parameters are replaced in place, new ones are appended.
func UpdateQuery(s string, q query.Values) (string, error) {
	u, err := Parse(s)
	if err != nil {
		return "", errtrace.Wrap(err)
	}
	for k, v := range q.All() {
		u.Query.Set(k, v)
	}
	return u.String(), nil
}

// IsRelative reports whether the URI is a relative reference.
func (u *URI) IsRelative() bool { return u != nil && u.Scheme == Relative }

// SetScheme sets the scheme.
func (u *URI) SetScheme(scheme string) *URI {
	u.Scheme = scheme
	return u
}

// SetAuthority replaces the userinfo. Host and port stay untouched.
func (u *URI) SetAuthority(ui UserInfo) *URI {
	u.User = ui
	return u
}

// SetHost sets the host.
func (u *URI) SetHost(host string) *URI {
	u.Host = host
	return u
}

// SetPort sets the explicit port.
func (u *URI) SetPort(port uint16) *URI {
	u.port, u.hasPort = port, true
	return u
}

// ClearPort unsets the explicit port.
func (u *URI) ClearPort() *URI {
	u.port, u.hasPort = 0, false
	return u
}

// ExplicitPort returns the port given in the URI text or set with [URI.SetPort].
func (u *URI) ExplicitPort() (uint16, bool) {
	if u == nil {
		return 0, false
	}
	return u.port, u.hasPort
}

// Port returns the explicit port or the default port of the scheme from [schemeport.Default].
// Relative references without an explicit port have no port, 0 is returned.
func (u *URI) Port() uint16 { return u.PortWith(schemeport.Default()) }

// PortWith is like [URI.Port] but resolves the default port with l.
// A nil l means [schemeport.Default].
func (u *URI) PortWith(l schemeport.Lookup) uint16 {
	if u == nil {
		return 0
	}
	if u.hasPort {
		return u.port
	}
	if u.IsRelative() {
		return 0
	}
	if l == nil {
		l = schemeport.Default()
	}
	return l.Port(u.Scheme)
}

// SetPath replaces the path segments with the segments of p.
// One leading "/" is dropped, so "a/b" and "/a/b" set the same segments.
// A trailing "/" produces a trailing empty segment. An empty p clears the path.
func (u *URI) SetPath(p string) *URI {
	u.Path = grammar.SplitPath(p)
	return u
}

// PathString returns the rendered path, e.g. "/a/b/".
func (u *URI) PathString() string {
	if u == nil || len(u.Path) == 0 {
		return ""
	}
	return "/" + strings.Join(u.Path, "/")
}

// SetFragment sets the fragment.
func (u *URI) SetFragment(frag string) *URI {
	u.Fragment = frag
	return u
}

// Clone returns a deep copy of the URI.
func (u *URI) Clone() *URI {
	if u == nil {
		return nil
	}
	u2 := *u
	u2.Path = slices.Clone(u.Path)
	u2.Query = u.Query.Clone()
	return &u2
}

// RenderTo writes the URI to the provided writer.
//
// Absolute URIs render as "scheme://[userinfo@]host[:port]", relative references
// render the leading token kept in Host. Path segments, query and fragment follow.
// The port is written only when set explicitly; with [RenderOptions.Compact]
// it is omitted as well when it equals the scheme default.
func (u *URI) RenderTo(w io.Writer, opts *RenderOptions) (num int, err error) {
	if u == nil {
		return 0, nil
	}

	cw := ioutil.GetCountingWriter(w)
	defer ioutil.FreeCountingWriter(cw)
	if u.IsRelative() {
		cw.WriteString(u.Host) //nolint:errcheck
	} else {
		if u.Scheme != "" {
			cw.WriteString(u.Scheme, "://") //nolint:errcheck
		}
		if !u.User.IsZero() {
			cw.WriteString(u.User.String(), "@") //nolint:errcheck
		}
		cw.WriteString(u.Host) //nolint:errcheck
		if u.hasPort && !(opts != nil && opts.Compact && u.port == schemeport.Default().Port(u.Scheme)) {
			cw.Fprint(":", u.port) //nolint:errcheck
		}
	}
	for _, seg := range u.Path {
		cw.WriteString("/", seg) //nolint:errcheck
	}
	cw.Call(func(w io.Writer) (int, error) { return errtrace.Wrap2(u.Query.RenderTo(w, opts)) })
	if u.Fragment != "" {
		cw.WriteString("#", u.Fragment) //nolint:errcheck
	}
	return errtrace.Wrap2(cw.Result())
}

// Render returns the string representation of the URI.
func (u *URI) Render(opts *RenderOptions) string {
	if u == nil {
		return ""
	}
	sb := util.GetStringBuilder()
	defer util.FreeStringBuilder(sb)
	u.RenderTo(sb, opts) //nolint:errcheck
	return sb.String()
}

// String returns the string representation of the URI.
func (u *URI) String() string {
	if u == nil {
		return ""
	}
	return u.Render(nil)
}

// Format implements fmt.Formatter for custom formatting of the URI.
// Verbs %s and %v print the reference, %+v and %#v print the fields.
func (u *URI) Format(f fmt.State, verb rune) {
	switch {
	case verb == 's' && f.Flag('+'):
		u.RenderTo(f, nil) //nolint:errcheck
		return
	case verb == 's', verb == 'v' && !f.Flag('+') && !f.Flag('#'):
		fmt.Fprint(f, u.String())
		return
	case verb == 'q':
		fmt.Fprint(f, strconv.Quote(u.String()))
		return
	default:
		type hideMethods URI
		type URI hideMethods
		fmt.Fprintf(f, fmt.FormatString(f, verb), (*URI)(u))
		return
	}
}

// Equal compares this URI with another for equality.
// Scheme and host are compared case-insensitively, everything else exactly.
// Query parameters must match in order.
func (u *URI) Equal(val any) bool {
	var other *URI
	switch v := val.(type) {
	case URI:
		other = &v
	case *URI:
		other = v
	default:
		return false
	}

	if u == other {
		return true
	} else if u == nil || other == nil {
		return false
	}

	return util.EqFold(u.Scheme, other.Scheme) &&
		u.User.Equal(other.User) &&
		util.EqFold(u.Host, other.Host) &&
		u.hasPort == other.hasPort && u.port == other.port &&
		slices.Equal(u.Path, other.Path) &&
		u.Query.Equal(&other.Query) &&
		u.Fragment == other.Fragment
}

// IsValid checks whether the URI renders into a parsable reference with a meaningful host.
// Absolute URIs need a scheme and a domain name or IP address host,
// relative references need a host that is empty or starts with ".".
func (u *URI) IsValid() bool {
	if u == nil {
		return false
	}
	if u.IsRelative() {
		return (u.Host == "" || u.Host[0] == '.') && !strings.ContainsAny(u.Host, "/?#")
	}
	return u.Scheme != "" && !strings.ContainsAny(u.Scheme, ":/?#") &&
		isValidHost(u.Host) &&
		(u.User.IsZero() || u.User.IsValid())
}

func isValidHost(host string) bool {
	if host == "" {
		return false
	}
	if net.ParseIP(host) != nil {
		return true
	}
	_, ok := dns.IsDomainName(host)
	return ok && !strings.ContainsAny(host, " :/?#@")
}

// MarshalText implements [encoding.TextMarshaler].
func (u *URI) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (u *URI) UnmarshalText(text []byte) error {
	u1, err := Parse(text)
	if err != nil {
		*u = URI{}
		return errtrace.Wrap(err)
	}
	*u = *u1
	return nil
}

// MarshalYAML renders the URI components as a mapping.
// Only an explicit port is included.
func (u *URI) MarshalYAML() (any, error) {
	type doc struct {
		Scheme   string        `yaml:"scheme"`
		User     string        `yaml:"user,omitempty"`
		Password *string       `yaml:"password,omitempty"`
		Host     string        `yaml:"host"`
		Port     *uint16       `yaml:"port,omitempty"`
		Path     []string      `yaml:"path,flow,omitempty"`
		Query    *query.Values `yaml:"query,omitempty"`
		Fragment string        `yaml:"fragment,omitempty"`
	}
	d := doc{
		Scheme:   u.Scheme,
		User:     u.User.Username(),
		Host:     u.Host,
		Path:     u.Path,
		Fragment: u.Fragment,
	}
	if pwd, ok := u.User.Password(); ok {
		d.Password = &pwd
	}
	if port, ok := u.ExplicitPort(); ok {
		d.Port = &port
	}
	if !u.Query.IsZero() {
		d.Query = &u.Query
	}
	return d, nil
}

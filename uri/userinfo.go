package uri

import (
	"strings"

	"github.com/ghettovoice/uribuilder/internal/grammar"
	"github.com/ghettovoice/uribuilder/internal/util"
)

// UserInfo is a container for user credentials of the URI authority.
type UserInfo struct {
	usrname, passwd string
	hasPasswd       bool
}

// User returns a [UserInfo] containing the provided username and no password.
func User(usrname string) UserInfo {
	return UserInfo{usrname: usrname}
}

// UserPassword returns a [UserInfo] containing the provided username and password.
func UserPassword(usrname, passwd string) UserInfo {
	return UserInfo{usrname: usrname, passwd: passwd, hasPasswd: true}
}

// ParseUserInfo decodes the "user[:password]" part of an authority.
// The password starts after the first ":".
func ParseUserInfo(s string) UserInfo {
	usr, pwd, ok := strings.Cut(s, ":")
	if !ok {
		return User(grammar.Unescape(usr))
	}
	return UserPassword(grammar.Unescape(usr), grammar.Unescape(pwd))
}

// Username returns the username from the UserInfo.
func (ui UserInfo) Username() string { return ui.usrname }

// Password returns the password, in case it is set, and a bool flag indicating whether it is set.
func (ui UserInfo) Password() (string, bool) { return ui.passwd, ui.hasPasswd }

func shouldEscapeUserChar(c byte) bool { return !grammar.IsUserCharUnreserved(c) }

func shouldEscapePasswdChar(c byte) bool { return !grammar.IsPasswdCharUnreserved(c) }

// String returns the escaped "user[:password]" form, without the trailing "@".
func (ui UserInfo) String() string {
	sb := util.GetStringBuilder()
	defer util.FreeStringBuilder(sb)
	if ui.usrname != "" {
		sb.WriteString(grammar.Escape(ui.usrname, shouldEscapeUserChar))
	}
	if ui.hasPasswd {
		sb.WriteString(":")
		sb.WriteString(grammar.Escape(ui.passwd, shouldEscapePasswdChar))
	}
	return sb.String()
}

// Equal compares this UserInfo with another for equality.
func (ui UserInfo) Equal(val any) bool {
	var other UserInfo
	switch v := val.(type) {
	case UserInfo:
		other = v
	case *UserInfo:
		if v == nil {
			return false
		}
		other = *v
	default:
		return false
	}
	return ui.usrname == other.usrname && ui.passwd == other.passwd && ui.hasPasswd == other.hasPasswd
}

// IsValid checks whether the UserInfo has a username.
// A password without a username is meaningless.
func (ui UserInfo) IsValid() bool { return ui.usrname != "" }

// IsZero checks whether the UserInfo is empty.
func (ui UserInfo) IsZero() bool { return ui.usrname == "" && ui.passwd == "" && !ui.hasPasswd }

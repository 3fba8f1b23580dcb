package types

import (
	"fmt"
	"strings"
)

// Scope selects which store root a check runs against.
type Scope int

const (
	// ScopeMachine is the machine-wide root (HKEY_LOCAL_MACHINE). It is the default.
	ScopeMachine Scope = iota
	// ScopeUser is the per-user root (HKEY_CURRENT_USER).
	ScopeUser
)

func (s Scope) String() string {
	switch s {
	case ScopeMachine:
		return "machine"
	case ScopeUser:
		return "user"
	default:
		return fmt.Sprintf("scope(%d)", int(s))
	}
}

// ParseScope accepts "machine" or "user" in any letter case.
func ParseScope(s string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "machine":
		return ScopeMachine, nil
	case "user":
		return ScopeUser, nil
	default:
		return 0, &Error{Kind: ErrKindNotSupported, Msg: fmt.Sprintf("unsupported scope %q", s)}
	}
}

// Set implements pflag.Value so a Scope can be bound directly to a flag.
func (s *Scope) Set(v string) error {
	parsed, err := ParseScope(v)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Type implements pflag.Value.
func (s *Scope) Type() string { return "scope" }

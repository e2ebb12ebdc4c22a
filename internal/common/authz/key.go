// Package authz holds the permission vocabulary shared by every protected
// operation: permission keys, permission sets, the code-defined role defaults
// and the resolver that combines them into an admin's effective permissions.
package authz

import (
	"regexp"
	"strings"
)

const wildcard = "*"

var keyPattern = regexp.MustCompile(`^[a-z][a-z0-9_-]*:[a-z][a-z0-9_-]*$`)

// Key is a permission key. It is either the wildcard, which grants every
// permission, or a named "resource:action" key.
type Key struct {
	name string
	any  bool
}

// Any returns the wildcard key.
func Any() Key { return Key{any: true} }

// Named returns a named key. Use Parse for untrusted strings.
func Named(name string) Key { return Key{name: name} }

// Parse converts a stored string into a Key; "*" becomes the wildcard.
func Parse(s string) Key {
	s = strings.TrimSpace(s)
	if s == wildcard {
		return Any()
	}
	return Named(s)
}

func (k Key) IsAny() bool { return k.any }

// Name is the named key, or "" for the wildcard.
func (k Key) Name() string { return k.name }

func (k Key) String() string {
	if k.any {
		return wildcard
	}
	return k.name
}

// Valid reports whether k is the wildcard or a well-formed resource:action key.
func (k Key) Valid() bool {
	return k.any || keyPattern.MatchString(k.name)
}

// Resource is the part before the colon.
func (k Key) Resource() string {
	if k.any {
		return wildcard
	}
	resource, _, _ := strings.Cut(k.name, ":")
	return resource
}

func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Key) UnmarshalText(b []byte) error {
	*k = Parse(string(b))
	return nil
}

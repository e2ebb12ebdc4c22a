package authz

import (
	"encoding/json"
	"sort"
)

// Set is an unordered collection of permission keys. Membership is binary.
type Set struct {
	any   bool
	named map[string]struct{}
}

func NewSet(keys ...Key) Set {
	s := Set{named: make(map[string]struct{}, len(keys))}
	for _, k := range keys {
		s.Add(k)
	}
	return s
}

// SetOf parses stored permission strings into a Set. Blank entries are ignored.
func SetOf(keys []string) Set {
	s := Set{named: make(map[string]struct{}, len(keys))}
	for _, raw := range keys {
		k := Parse(raw)
		if !k.any && k.name == "" {
			continue
		}
		s.Add(k)
	}
	return s
}

func (s *Set) Add(k Key) {
	if k.any {
		s.any = true
		return
	}
	if s.named == nil {
		s.named = make(map[string]struct{})
	}
	s.named[k.name] = struct{}{}
}

// Union returns a new set holding the members of s and every other set.
func (s Set) Union(others ...Set) Set {
	out := NewSet()
	out.merge(s)
	for _, o := range others {
		out.merge(o)
	}
	return out
}

func (s *Set) merge(o Set) {
	if o.any {
		s.any = true
	}
	for name := range o.named {
		s.named[name] = struct{}{}
	}
}

// Has reports exact membership of k.
func (s Set) Has(k Key) bool {
	if k.any {
		return s.any
	}
	_, ok := s.named[k.name]
	return ok
}

// Allows reports whether holding s satisfies required. The wildcard satisfies
// everything, including keys that are not in the permission catalog.
func (s Set) Allows(required Key) bool {
	if s.any {
		return true
	}
	if required.any {
		return false
	}
	_, ok := s.named[required.name]
	return ok
}

func (s Set) HasWildcard() bool { return s.any }

func (s Set) Len() int {
	n := len(s.named)
	if s.any {
		n++
	}
	return n
}

// Keys returns the members as sorted strings, wildcard first.
func (s Set) Keys() []string {
	out := make([]string, 0, s.Len())
	for name := range s.named {
		out = append(out, name)
	}
	sort.Strings(out)
	if s.any {
		out = append([]string{wildcard}, out...)
	}
	return out
}

// Subset reports whether every member of s is a member of o.
func (s Set) Subset(o Set) bool {
	if s.any && !o.any {
		return false
	}
	for name := range s.named {
		if _, ok := o.named[name]; !ok {
			return false
		}
	}
	return true
}

func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Keys())
}

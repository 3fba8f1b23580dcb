package deps

import (
	"errors"

	"github.com/joshuapare/pkgdep/pkg/types"
)

// IgnoreMatch selects how dependent keys are compared with the ignore
// list.
type IgnoreMatch int

const (
	// IgnoreFold compares with the provider identity relation, so "foo"
	// ignores a dependent registered as "FOO". This is the default.
	IgnoreFold IgnoreMatch = iota
	// IgnoreExact requires the names to be byte-for-byte equal.
	IgnoreExact
)

func (m IgnoreMatch) String() string {
	if m == IgnoreExact {
		return "exact"
	}
	return "fold"
}

// DependentsOptions tunes CheckDependents.
type DependentsOptions struct {
	// Attributes is accepted for compatibility and currently has no effect.
	Attributes types.Attributes
	// Ignore lists dependent keys to leave out of the result.
	Ignore []string
	// Match chooses how Ignore entries are compared.
	Match IgnoreMatch
}

type ignoreSet struct {
	names map[string]struct{}
	match IgnoreMatch
}

func newIgnoreSet(names []string, match IgnoreMatch) ignoreSet {
	s := ignoreSet{names: make(map[string]struct{}, len(names)), match: match}
	for _, n := range names {
		s.names[s.norm(n)] = struct{}{}
	}
	return s
}

func (s ignoreSet) norm(name string) string {
	if s.match == IgnoreExact {
		return name
	}
	return Identity(name)
}

func (s ignoreSet) has(name string) bool {
	_, ok := s.names[s.norm(name)]
	return ok
}

// CheckDependents lists the providers registered as dependents of key in
// scope, in store enumeration order, skipping ignored keys.
//
// A missing ledger root, provider key or Dependents key all mean "no
// dependents" and yield a nil slice; a Dependents key with no children
// yields an empty, non-nil slice. Each dependent is resolved to its full
// record when its own provider key can be read, and to a bare record
// otherwise.
func (c *Checker) CheckDependents(key string, scope types.Scope, opts DependentsOptions) ([]Provider, error) {
	out, err := c.checkDependents(key, scope, opts)
	switch {
	case err != nil:
		c.rec.Check(OpDependents, "error")
	case len(out) == 0:
		c.rec.Check(OpDependents, "none")
		c.rec.Dependents(0)
	default:
		c.rec.Check(OpDependents, "found")
		c.rec.Dependents(len(out))
	}
	return out, err
}

func (c *Checker) checkDependents(key string, scope types.Scope, opts DependentsOptions) ([]Provider, error) {
	root, err := c.OpenRoot(scope, false)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			c.log.Debug("ledger root missing", "scope", scope, "root", c.rootPath)
			return nil, nil
		}
		return nil, err
	}
	defer root.Close()

	dependents, err := root.OpenSubkey(key + types.PathSeparator + types.DependentsKey)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			c.log.Debug("no dependents key", "key", key, "scope", scope)
			return nil, nil
		}
		return nil, err
	}
	defer dependents.Close()

	it, err := dependents.Keys()
	if err != nil {
		return nil, err
	}
	var names []string
	for it.Next() {
		names = append(names, it.Name())
	}
	it.Close()

	ignore := newIgnoreSet(opts.Ignore, opts.Match)
	out := make([]Provider, 0, len(names))
	for _, name := range names {
		if ignore.has(name) {
			c.log.Debug("ignoring dependent", "key", key, "dependent", name)
			continue
		}
		p, err := readProvider(root, name)
		if err != nil {
			c.log.Debug("dependent not resolvable", "dependent", name, "error", err)
			p = Bare(name)
		}
		out = append(out, p)
	}
	return out, nil
}

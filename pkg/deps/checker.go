package deps

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/joshuapare/pkgdep/pkg/registry"
	"github.com/joshuapare/pkgdep/pkg/types"
	"github.com/joshuapare/pkgdep/pkg/values"
	"github.com/joshuapare/pkgdep/pkg/version"
)

// Recorder receives check outcomes. internal/metrics provides a
// Prometheus implementation.
type Recorder interface {
	// Check counts one operation and its result ("ok", "violation",
	// "none", "found" or "error").
	Check(op, result string)
	// Violation counts one provider added to a violation set.
	Violation()
	// Dependents records the size of the last dependents listing.
	Dependents(n int)
}

type nopRecorder struct{}

func (nopRecorder) Check(string, string) {}
func (nopRecorder) Violation()           {}
func (nopRecorder) Dependents(int)       {}

// Operation names passed to Recorder.Check.
const (
	OpDependency = "dependency"
	OpDependents = "dependents"
)

// Checker runs ledger queries and updates against a store backend.
type Checker struct {
	backend  registry.Backend
	rootPath string
	log      *slog.Logger
	rec      Recorder
}

// Option configures a Checker.
type Option func(*Checker)

// WithRootPath overrides the ledger root below each scope root.
func WithRootPath(path string) Option {
	return func(c *Checker) {
		if path != "" {
			c.rootPath = path
		}
	}
}

// WithLogger sets the logger; the default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(c *Checker) {
		if l != nil {
			c.log = l
		}
	}
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Checker) {
		if r != nil {
			c.rec = r
		}
	}
}

// New returns a Checker reading from backend.
func New(backend registry.Backend, opts ...Option) *Checker {
	c := &Checker{
		backend:  backend,
		rootPath: types.RootKeyPath,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		rec:      nopRecorder{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RootPath is the ledger root the checker uses.
func (c *Checker) RootPath() string { return c.rootPath }

// Backend is the store the checker reads.
func (c *Checker) Backend() registry.Backend { return c.backend }

// OpenRoot opens the ledger root for scope. With create set the root is
// opened writable and created when missing.
func (c *Checker) OpenRoot(scope types.Scope, create bool) (*registry.Key, error) {
	base, err := c.backend.Root(scope)
	if err != nil {
		return nil, err
	}
	defer base.Close()
	if create {
		return registry.Create(base, c.rootPath)
	}
	return registry.Open(base, c.rootPath)
}

// GetProvider reads the full record for key. A missing root or provider
// key is reported with an error matching types.ErrNotFound.
func (c *Checker) GetProvider(key string, scope types.Scope) (Provider, error) {
	root, err := c.OpenRoot(scope, false)
	if err != nil {
		return Provider{}, err
	}
	defer root.Close()
	return readProvider(root, key)
}

func readProvider(root *registry.Key, key string) (Provider, error) {
	k, err := root.OpenSubkey(key)
	if err != nil {
		return Provider{}, err
	}
	defer k.Close()
	return fromKey(k, key), nil
}

func fromKey(k *registry.Key, key string) Provider {
	p := Provider{Key: key}
	if v, ok := k.Value(types.DefaultValue); ok {
		p.ID, _ = values.Text(v)
	}
	if v, ok := k.Value(types.DisplayNameValue); ok {
		p.Name, _ = values.Text(v)
	}
	if v, ok := readVersion(k); ok {
		p.Version = &v
	}
	if v, ok := k.Value(types.AttributesValue); ok {
		if n, ok := v.(values.DWord); ok {
			p.Attributes = types.Attributes(n)
		}
	}
	return p
}

// readVersion accepts the text form or a packed QWORD.
func readVersion(k *registry.Key) (version.Version, bool) {
	v, ok := k.Value(types.VersionValue)
	if !ok {
		return version.Version{}, false
	}
	switch x := v.(type) {
	case values.String, values.ExpandString:
		text, _ := values.Text(x)
		ver, err := version.Parse(text)
		if err != nil {
			return version.Version{}, false
		}
		return ver, true
	case values.QWord:
		return version.FromUint64(uint64(x)), true
	default:
		return version.Version{}, false
	}
}

// Range bounds a dependency's version. Nil bounds are unconstrained;
// Attributes selects whether each bound is inclusive.
type Range struct {
	Min        *version.Version
	Max        *version.Version
	Attributes types.Attributes
}

// CheckDependency verifies that the provider key is registered in scope
// and that its version lies within r. On failure the provider is added to
// violations (a bare record when the key or its version is missing) and
// an error matching types.ErrNotFound describes why. Any other error
// means the check itself could not run; a missing ledger root is one of
// those.
func (c *Checker) CheckDependency(key string, scope types.Scope, r Range, violations *Set) error {
	err := c.checkDependency(key, scope, r, violations)
	switch {
	case err == nil:
		c.rec.Check(OpDependency, "ok")
	case errors.Is(err, types.ErrNotFound):
		c.rec.Check(OpDependency, "violation")
	default:
		c.rec.Check(OpDependency, "error")
	}
	return err
}

func (c *Checker) checkDependency(key string, scope types.Scope, r Range, violations *Set) error {
	root, err := c.OpenRoot(scope, false)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			// The root is expected on any configured system, so its absence
			// is not a per-dependency signal.
			return types.StoreError(fmt.Sprintf("open ledger root %q: %v", c.rootPath, err), codeFileNotFound, nil)
		}
		return err
	}
	defer root.Close()

	k, err := root.OpenSubkey(key)
	if err != nil {
		if !errors.Is(err, types.ErrNotFound) {
			return err
		}
		c.violate(violations, Bare(key), "provider not registered")
		return notSatisfied(key, "is not registered")
	}
	p := fromKey(k, key)
	k.Close()
	if p.Version == nil {
		c.violate(violations, Bare(key), "version missing or unreadable")
		return notSatisfied(key, "has no readable version")
	}
	ver := *p.Version

	if r.Min != nil && !atLeast(ver, *r.Min, r.Attributes.IsMinInclusive()) {
		c.violate(violations, p, "below minimum", "min", r.Min.String())
		return notSatisfied(key, fmt.Sprintf("version %s is below %s minimum %s", ver, bound(r.Attributes.IsMinInclusive()), r.Min))
	}
	if r.Max != nil && !atMost(ver, *r.Max, r.Attributes.IsMaxInclusive()) {
		c.violate(violations, p, "above maximum", "max", r.Max.String())
		return notSatisfied(key, fmt.Sprintf("version %s is above %s maximum %s", ver, bound(r.Attributes.IsMaxInclusive()), r.Max))
	}
	return nil
}

const codeFileNotFound = 2

func atLeast(v, min version.Version, allowEqual bool) bool {
	return (allowEqual && min.Compare(v) <= 0) || min.Less(v)
}

func atMost(v, max version.Version, allowEqual bool) bool {
	return (allowEqual && v.Compare(max) <= 0) || v.Less(max)
}

func bound(inclusive bool) string {
	if inclusive {
		return "inclusive"
	}
	return "exclusive"
}

func notSatisfied(key, why string) error {
	return &types.Error{Kind: types.ErrKindNotFound, Msg: fmt.Sprintf("dependency %q %s", key, why)}
}

func (c *Checker) violate(s *Set, p Provider, reason string, args ...any) {
	if s != nil && s.Insert(p) {
		c.rec.Violation()
	}
	c.log.Debug("dependency violation", append([]any{"key", p.Key, "reason", reason}, args...)...)
}

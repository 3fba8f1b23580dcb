package deps

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/joshuapare/pkgdep/pkg/registry"
	"github.com/joshuapare/pkgdep/pkg/types"
	"github.com/joshuapare/pkgdep/pkg/values"
)

// NormalizeID renders ids that parse as UUIDs in the braced upper-case
// form installers use ("{6F3A...}"); anything else is returned trimmed.
func NormalizeID(id string) string {
	id = strings.TrimSpace(id)
	u, err := uuid.Parse(id)
	if err != nil {
		return id
	}
	return "{" + strings.ToUpper(u.String()) + "}"
}

func validKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return types.FormatError("provider key is empty", nil)
	}
	if strings.Contains(key, types.PathSeparator) {
		return types.FormatError(fmt.Sprintf("provider key %q contains %q", key, types.PathSeparator), nil)
	}
	return nil
}

// RegisterProvider creates or updates p's key. Empty fields are not
// written, so re-registering with less information keeps what is stored.
func (c *Checker) RegisterProvider(p Provider, scope types.Scope) error {
	if err := validKey(p.Key); err != nil {
		return err
	}
	root, err := c.OpenRoot(scope, true)
	if err != nil {
		return err
	}
	defer root.Close()

	k, err := root.CreateSubkey(p.Key)
	if err != nil {
		return err
	}
	defer k.Close()

	if p.ID != "" {
		if err := k.SetValue(types.DefaultValue, values.String(NormalizeID(p.ID))); err != nil {
			return err
		}
	}
	if p.Name != "" {
		if err := k.SetValue(types.DisplayNameValue, values.String(p.Name)); err != nil {
			return err
		}
	}
	if p.Version != nil {
		if err := k.SetValue(types.VersionValue, values.String(p.Version.String())); err != nil {
			return err
		}
	}
	if p.Attributes != 0 {
		if err := k.SetValue(types.AttributesValue, values.DWord(p.Attributes)); err != nil {
			return err
		}
	}
	c.log.Debug("registered provider", "key", p.Key, "scope", scope)
	return nil
}

// RegisterDependent records dependent as depending on provider.
func (c *Checker) RegisterDependent(provider, dependent string, scope types.Scope) error {
	if err := validKey(provider); err != nil {
		return err
	}
	if err := validKey(dependent); err != nil {
		return err
	}
	root, err := c.OpenRoot(scope, true)
	if err != nil {
		return err
	}
	defer root.Close()

	k, err := root.CreateSubkey(registry.JoinPath(provider, types.DependentsKey, dependent))
	if err != nil {
		return err
	}
	c.log.Debug("registered dependent", "key", provider, "dependent", dependent, "scope", scope)
	return k.Close()
}

// UnregisterDependent removes dependent from provider's dependents. It is
// not an error if the registration does not exist.
func (c *Checker) UnregisterDependent(provider, dependent string, scope types.Scope) error {
	if err := validKey(provider); err != nil {
		return err
	}
	if err := validKey(dependent); err != nil {
		return err
	}
	root, err := c.openRootWritable(scope)
	if err != nil {
		return ignoreNotFound(err)
	}
	defer root.Close()

	k, err := root.OpenSubkey(registry.JoinPath(provider, types.DependentsKey))
	if err != nil {
		return ignoreNotFound(err)
	}
	defer k.Close()

	if err := k.DeleteTree(dependent); err != nil {
		return ignoreNotFound(err)
	}
	c.log.Debug("unregistered dependent", "key", provider, "dependent", dependent, "scope", scope)
	return nil
}

// UnregisterProvider removes provider's key. It fails with a state error
// while any dependents remain registered. Removing a provider that does
// not exist is not an error.
func (c *Checker) UnregisterProvider(key string, scope types.Scope) error {
	if err := validKey(key); err != nil {
		return err
	}
	remaining, err := c.checkDependents(key, scope, DependentsOptions{})
	if err != nil {
		return err
	}
	if len(remaining) > 0 {
		return &types.Error{
			Kind: types.ErrKindState,
			Msg:  fmt.Sprintf("provider %q still has %d dependent(s)", key, len(remaining)),
		}
	}

	root, err := c.openRootWritable(scope)
	if err != nil {
		return ignoreNotFound(err)
	}
	defer root.Close()

	if err := root.DeleteTree(key); err != nil {
		return ignoreNotFound(err)
	}
	c.log.Debug("unregistered provider", "key", key, "scope", scope)
	return nil
}

func (c *Checker) openRootWritable(scope types.Scope) (*registry.Key, error) {
	base, err := c.backend.Root(scope)
	if err != nil {
		return nil, err
	}
	defer base.Close()
	return registry.OpenWritable(base, c.rootPath)
}

func ignoreNotFound(err error) error {
	if errors.Is(err, types.ErrNotFound) {
		return nil
	}
	return err
}

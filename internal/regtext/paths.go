package regtext

import (
	"fmt"
	"strings"

	"github.com/joshuapare/pkgdep/pkg/types"
)

var rootAliases = map[string]string{
	HKEYLocalMachineShort:  HKEYLocalMachine,
	HKEYCurrentUserShort:   HKEYCurrentUser,
	HKEYClassesRootShort:   HKEYClassesRoot,
	HKEYUsersShort:         HKEYUsers,
	HKEYCurrentConfigShort: HKEYCurrentConfig,
}

// expandRootKeyAlias rewrites a leading HKLM/HKCU/... to its long form.
func expandRootKeyAlias(path string) string {
	head, rest, found := strings.Cut(path, Backslash)
	long, ok := rootAliases[strings.ToUpper(head)]
	if !ok {
		return path
	}
	if !found {
		return long
	}
	return long + Backslash + rest
}

// SplitRoot maps a full key path such as
// HKEY_LOCAL_MACHINE\Software\Vendor to its scope and the path below the
// scope root. HKEY_CLASSES_ROOT resolves to the machine scope's
// Software\Classes. Roots without a scope (HKEY_USERS,
// HKEY_CURRENT_CONFIG) are not supported.
func SplitRoot(path string) (types.Scope, string, error) {
	path = strings.Trim(expandRootKeyAlias(strings.TrimSpace(path)), Backslash)
	head, rest, _ := strings.Cut(path, Backslash)
	switch strings.ToUpper(head) {
	case HKEYLocalMachine:
		return types.ScopeMachine, rest, nil
	case HKEYCurrentUser:
		return types.ScopeUser, rest, nil
	case HKEYClassesRoot:
		if rest == "" {
			return types.ScopeMachine, classesRootPath, nil
		}
		return types.ScopeMachine, classesRootPath + Backslash + rest, nil
	default:
		return 0, "", &types.Error{Kind: types.ErrKindNotSupported, Msg: fmt.Sprintf("regtext: unsupported root in %q", path)}
	}
}

// JoinRoot is the inverse of SplitRoot for the two scope roots.
func JoinRoot(scope types.Scope, path string) string {
	root := HKEYLocalMachine
	if scope == types.ScopeUser {
		root = HKEYCurrentUser
	}
	path = strings.Trim(path, Backslash)
	if path == "" {
		return root
	}
	return root + Backslash + path
}

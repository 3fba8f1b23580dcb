// Package types defines the small, dependency-free vocabulary shared by the
// store, value and dependency packages: typed errors with stable kinds,
// registry value type tags, scopes, requirement attributes and the fixed
// names that make up the dependency ledger layout.
//
// Design goals:
//   - Typed errors with stable categories (format/not found/not supported/store).
//   - "Not found" is matchable with errors.Is regardless of message.
//   - No dependencies beyond the standard library.
package types

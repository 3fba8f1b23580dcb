package types

// ============================================================================
// Dependency ledger layout
// ============================================================================
// These names are the on-store format shared with every other installer that
// reads or writes the ledger. Changing any of them breaks interoperability.

const (
	// RootKeyPath is where provider keys live beneath each scope root.
	RootKeyPath = `Software\Classes\Installer\Dependencies`

	// DependentsKey is the child of a provider key whose subkey names are the
	// provider keys of its dependents.
	DependentsKey = "Dependents"

	// DefaultValue is the unnamed value; it holds the provider's external id.
	DefaultValue = ""

	// DisplayNameValue holds the provider's display name.
	DisplayNameValue = "DisplayName"

	// VersionValue holds the provider's version, as text or a packed QWORD.
	VersionValue = "Version"

	// AttributesValue holds optional provider attribute bits as a DWORD.
	AttributesValue = "Attributes"

	// PathSeparator separates segments of a key path.
	PathSeparator = `\`
)

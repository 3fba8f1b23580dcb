package regtext

const (
	// ============================================================================
	// .reg File Format Tokens
	// ============================================================================

	// RegFileHeader is the required header line for .reg files version 5.00
	RegFileHeader = "Windows Registry Editor Version 5.00"

	// KeyOpenBracket marks the start of a registry key path
	KeyOpenBracket = "["

	// KeyCloseBracket marks the end of a registry key path
	KeyCloseBracket = "]"

	// DeleteKeyPrefix marks a key for deletion (e.g., [-HKEY_LOCAL_MACHINE\...])
	DeleteKeyPrefix = "-"

	// ValueAssignment separates value names from their data
	ValueAssignment = "="

	// DefaultValuePrefix marks the default (unnamed) value
	DefaultValuePrefix = "@="

	// CommentPrefix marks a comment line
	CommentPrefix = ";"

	// DeleteValueToken marks a value for deletion
	DeleteValueToken = "-"

	// ============================================================================
	// Quote and Escape Characters
	// ============================================================================

	Quote            = "\""
	Backslash        = "\\"
	EscapedQuote     = "\\\""
	EscapedBackslash = "\\\\"

	CRLF = "\r\n"

	// ============================================================================
	// Value Type Prefixes
	// ============================================================================

	DWORDPrefix       = "dword:"
	HexPrefix         = "hex:"
	HexExpandSZPrefix = "hex(2):"
	HexMultiSZPrefix  = "hex(7):"
	HexQWORDPrefix    = "hex(b):"

	// HexTypeFormat renders any other tag as hex(<tag in hex>):
	HexTypeFormat = "hex(%x):"

	HexByteSeparator = ","
	HexByteFormat    = "%02x"
	DWORDHexFormat   = "%08x"
	DWORDHexLength   = 8

	// hexBytesPerLine keeps exported hex lines near regedit's 80 columns.
	hexBytesPerLine = 25

	// ============================================================================
	// Encoding Names
	// ============================================================================

	EncodingUTF8        = "UTF-8"
	EncodingUTF16LE     = "UTF-16LE"
	EncodingWindows1252 = "WINDOWS-1252"

	// ============================================================================
	// Registry Key Path Prefixes (HKEY roots)
	// ============================================================================

	HKEYLocalMachine      = "HKEY_LOCAL_MACHINE"
	HKEYLocalMachineShort = "HKLM"

	HKEYClassesRoot      = "HKEY_CLASSES_ROOT"
	HKEYClassesRootShort = "HKCR"

	HKEYCurrentUser      = "HKEY_CURRENT_USER"
	HKEYCurrentUserShort = "HKCU"

	HKEYUsers      = "HKEY_USERS"
	HKEYUsersShort = "HKU"

	HKEYCurrentConfig      = "HKEY_CURRENT_CONFIG"
	HKEYCurrentConfigShort = "HKCC"

	// classesRootPath is where HKEY_CLASSES_ROOT lands in the machine scope.
	classesRootPath = `Software\Classes`

	// ============================================================================
	// Scanner Sizes
	// ============================================================================

	ScannerInitialBufferSize = 64 * 1024
	ScannerMaxLineSize       = 1024 * 1024
)

var (
	UTF16LEBOM = []byte{0xFF, 0xFE}
	UTF8BOM    = []byte{0xEF, 0xBB, 0xBF}
)

// Package winreg adapts the native Windows registry to registry.Backend.
// It is only built on Windows.
package winreg

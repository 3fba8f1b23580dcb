// Package registry provides scoped handles over a hierarchical key/value
// store shaped like the Windows registry.
//
// The store itself is reached through the Backend and Node interfaces,
// which mirror the native registry API closely enough that the Windows
// implementation is a thin adapter: open or create a node by relative
// path, stat it, enumerate children and values by index, read a value
// into a caller-supplied buffer (with ErrMoreData when the buffer is too
// small), and write or delete values and keys. memstore, sqlstore and
// winreg provide implementations.
//
// Key wraps exactly one open Node. Whoever opens a Key owns it and must
// Close it, normally with defer:
//
//	k, err := registry.Open(root, types.RootKeyPath)
//	if err != nil {
//	    return err
//	}
//	defer k.Close()
//
// Close releases the node the first time it is called and is a no-op
// afterwards. Children opened from a Key inherit its access mode.
//
// Not found is a first-class result. Open and OpenSubkey return an error
// matching types.ErrNotFound so callers can decide whether absence is
// fatal; Value never returns an error and reports absence (including any
// read failure) as ok == false.
//
// Enumeration (Keys, Values) fetches the counts once and then walks by
// increasing index. It is not a transactional snapshot: nodes added or
// removed concurrently by other processes may be missed, and any backend
// failure during the walk simply ends the sequence.
package registry

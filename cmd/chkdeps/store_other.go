//go:build !windows

package main

import (
	"runtime"

	"github.com/joshuapare/pkgdep/pkg/types"
)

func openNativeStore() (*store, error) {
	return nil, &types.Error{
		Kind: types.ErrKindNotSupported,
		Msg:  "the registry backend is only available on windows, not " + runtime.GOOS,
	}
}

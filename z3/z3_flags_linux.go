//go:build cgo && linux
// +build cgo,linux

package z3

/*
// libz3 from the distribution packages lives on the default linker path.
// CGO_CFLAGS and CGO_LDFLAGS cover other installs.
#cgo LDFLAGS: -lz3
*/
import "C"

//go:build cgo && darwin
// +build cgo,darwin

package z3

/*
// Homebrew prefixes for Apple Silicon and Intel.
#cgo CFLAGS: -I/opt/homebrew/include -I/usr/local/include
#cgo LDFLAGS: -L/opt/homebrew/lib -L/usr/local/lib -lz3
*/
import "C"

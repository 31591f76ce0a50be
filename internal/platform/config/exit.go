package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Exitf reports a fatal startup error on stderr, prefixed with the program
// name, and exits with code 1.
func Exitf(format string, args ...any) {
	prog := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "%s: %s\n", prog, fmt.Sprintf(format, args...))
	os.Exit(1)
}

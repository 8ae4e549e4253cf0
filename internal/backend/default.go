package backend

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/seantiz/jsengine/internal/proc"
)

// onDarwin is evaluated once; the JavaScriptCore backend only exists on macOS.
var onDarwin = runtime.GOOS == "darwin"

// Options configures the standard backends.
type Options struct {
	// Runner spawns runtime processes. Defaults to proc.Run.
	Runner proc.Runner

	// LookPath resolves executables. Defaults to exec.LookPath.
	LookPath func(file string) (string, error)

	// RhinoJar is checked before the well-known Rhino jar locations.
	RhinoJar string
}

func (o Options) host() host {
	h := host{
		run:        o.Runner,
		lookPath:   o.LookPath,
		glob:       filepath.Glob,
		exists:     fileExists,
		executable: os.Executable,
	}
	if h.run == nil {
		h.run = proc.Run
	}
	if h.lookPath == nil {
		h.lookPath = exec.LookPath
	}
	return h
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Standard returns the supported backends in priority order.
func Standard(opts Options) []Backend {
	backends := []Backend{
		NewSpiderMonkey(opts),
		NewGoja(),
		NewNode(opts),
		NewRhino(opts),
	}
	if onDarwin {
		backends = append(backends, NewJavaScriptCore(opts))
	}
	return backends
}

// Default builds a registry of the standard backends.
func Default(opts Options) *Registry {
	reg, err := NewRegistry(Standard(opts)...)
	if err != nil {
		// Standard names are unique constants.
		panic(err)
	}
	return reg
}

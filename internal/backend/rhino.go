package backend

import (
	"context"
	"errors"
	"path/filepath"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

const rhinoMain = "org.mozilla.javascript.tools.shell.Main"

// rhinoJarGlobs are searched after the configured jar path.
var rhinoJarGlobs = []string{
	"/usr/share/java*/js.jar",
	"/usr/share/java*/rhino.jar",
}

var errNoRhinoJar = errors.New("rhino jar not found")

// NewRhino returns the backend for Mozilla Rhino running on the JVM.
func NewRhino(opts Options) Backend {
	jar := opts.RhinoJar
	return &commandBackend{
		name:    NameRhino,
		wrapper: printWrapper,
		locate: func(ctx context.Context, h host) (invocation, error) {
			return locateRhino(ctx, h, jar)
		},
		decode: decodeRhino,
		host:   opts.host(),
	}
}

func locateRhino(_ context.Context, h host, configured string) (invocation, error) {
	java, err := h.lookPath("java")
	if err != nil {
		return invocation{}, err
	}

	jar, err := findRhinoJar(h, configured)
	if err != nil {
		return invocation{}, err
	}

	return invocation{
		exe:  java,
		args: []string{"-cp", jar, rhinoMain},
	}, nil
}

// findRhinoJar returns the first existing jar among the candidates.
func findRhinoJar(h host, configured string) (string, error) {
	var candidates []string
	if configured != "" {
		candidates = append(candidates, configured)
	}
	for _, pattern := range rhinoJarGlobs {
		matches, err := h.glob(pattern)
		if err != nil {
			continue
		}
		candidates = append(candidates, matches...)
	}
	candidates = append(candidates, "js.jar")
	if exe, err := h.executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), "js.jar"))
	}

	for _, c := range candidates {
		if h.exists(c) {
			return c, nil
		}
	}
	return "", errNoRhinoJar
}

// decodeRhino turns Rhino's stdout into text. Output that is not valid UTF-8
// is read as ISO-8859-1. The decoded text is returned as is.
func decodeRhino(out string) string {
	if utf8.ValidString(out) {
		return out
	}
	text, err := charmap.ISO8859_1.NewDecoder().String(out)
	if err != nil {
		return out
	}
	return text
}

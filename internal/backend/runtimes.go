package backend

import (
	"context"
	"errors"
)

// Names of the supported runtimes, in priority order.
const (
	NameSpiderMonkey   = "js"
	NameGoja           = "goja"
	NameNode           = "node"
	NameRhino          = "rhino"
	NameJavaScriptCore = "jsc"
)

const (
	printWrapper   = "print(eval(unescape('%s')))"
	consoleWrapper = "console.log(eval(unescape('%s')))"
)

// jscPaths are the locations of the JavaScriptCore shell on macOS.
var jscPaths = []string{
	"/System/Library/Frameworks/JavaScriptCore.framework/Resources/jsc",
	"/System/Library/Frameworks/JavaScriptCore.framework/Versions/Current/Helpers/jsc",
}

var errNoJSC = errors.New("jsc shell not present in JavaScriptCore framework")

// NewSpiderMonkey returns the backend for the SpiderMonkey "js" shell.
func NewSpiderMonkey(opts Options) Backend {
	return &commandBackend{
		name:    NameSpiderMonkey,
		wrapper: printWrapper,
		locate:  lookPathWithVersion("js"),
		host:    opts.host(),
	}
}

// NewNode returns the backend for Node.js.
func NewNode(opts Options) Backend {
	return &commandBackend{
		name:    NameNode,
		wrapper: consoleWrapper,
		locate:  lookPathWithVersion("node"),
		host:    opts.host(),
	}
}

// NewJavaScriptCore returns the backend for the JavaScriptCore shell shipped
// with macOS.
func NewJavaScriptCore(opts Options) Backend {
	return &commandBackend{
		name:    NameJavaScriptCore,
		wrapper: printWrapper,
		locate:  locateJSC,
		host:    opts.host(),
	}
}

func locateJSC(_ context.Context, h host) (invocation, error) {
	for _, p := range jscPaths {
		if h.exists(p) {
			return invocation{exe: p}, nil
		}
	}
	return invocation{}, errNoJSC
}

// Package backend defines the interface every script runtime implements, the
// concrete descriptors for the supported runtimes (SpiderMonkey, goja, Node.js,
// Rhino, JavaScriptCore) and the priority-ordered registry that holds them.
package backend

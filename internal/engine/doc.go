// Package engine selects the active script runtime from a backend registry
// and evaluates scripts through it. In verification mode every result is
// cross-checked against the other available runtimes.
package engine

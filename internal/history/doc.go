// Package history persists the labeled results of supervised command runs so
// identical invocations can be replayed without spawning a process again.
package history

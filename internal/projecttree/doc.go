// Package projecttree renders a directory hierarchy as indented text so a
// project layout can be embedded in conversation prompts and console output.
package projecttree

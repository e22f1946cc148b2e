// Package workflow drives the conversational retry and debugging loop layered
// on top of the supervised command executor: it runs a command, submits the
// labeled result text to an agent conversation, and on an unsatisfied verdict
// spends a bounded number of debugging rounds before asking a human for help.
package workflow

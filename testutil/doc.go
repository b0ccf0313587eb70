// Package testutil holds helpers shared by command tests, mainly capturing
// what a command writes to stdout and stderr.
package testutil

// Package security checks the files xmrpos-login reads and writes.
//
// The config file decides which instance receives credentials, so a config
// that other users can modify is reported with ErrInsecureFilePermissions.
// Operator-supplied paths are checked for parent-directory references before
// use.
package security

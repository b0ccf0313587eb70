// Package config loads xmrpos-login settings.
//
// Values are layered, later sources winning:
//
//  1. built-in defaults (Default)
//  2. a YAML file, either the path passed explicitly or
//     $XDG_CONFIG_HOME/xmrpos/config.yaml when it exists
//  3. XMRPOS_* environment variables
//
// Command-line flags are applied on top by the CLI. Passwords are never
// read from configuration.
//
// Example config.yaml:
//
//	instanceUrl: pos.example.com
//	vendorId: "42"
//	username: alice
//	timeout: 15s
//	rateLimit: 1
//	rateBurst: 3
//	breakerFailures: 5
//	breakerTimeout: 30s
//	logFormat: text
package config

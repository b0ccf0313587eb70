// Package profile remembers the non-secret half of the last successful login
// (instance URL, vendor ID and username) so the next session can prefill the
// form. Passwords and tokens are never written.
//
// Profiles are stored as a versioned JSON envelope written atomically. A file
// written by an incompatible version is treated as absent.
package profile

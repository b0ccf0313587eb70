// Package fileutil provides the small set of file operations the CLI needs
// for its state files: atomic writes, JSON reads that tolerate missing files,
// and directory creation with restrictive permissions.
//
// AtomicWriteJSON and AtomicWriteFile write to a uniquely named temporary
// file in the target directory, sync it, set permissions and rename it into
// place, so readers never observe a partial file. The rename is retried a
// few times with a short backoff.
package fileutil

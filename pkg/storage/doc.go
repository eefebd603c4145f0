// Package storage persists downloaded card images under a single output
// directory, one file per post named {post_id}{ext}.
//
// Writes are streamed in fixed-size chunks through a temporary file that is
// renamed into place, so a path handed back by the manager always names a
// complete image. The directory is scanned once at startup to seed duplicate
// detection, which is what makes long scans resumable across runs.
package storage

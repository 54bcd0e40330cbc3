// Package filesystem provides the OS-backed implementation of the
// types.FS interface. Keeping filesystem access behind the interface
// lets the reconciler be exercised against temp-dir fixtures in tests.
package filesystem

// Package cli implements the megamerge command line: scan, inspect and
// version.
package cli

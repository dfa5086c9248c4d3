// Package conv converts between integer widths with bounds checks.
//
// The codec uses it for values that cross the wire: counts and sizes written
// into fixed-width frame headers and indices read back from untrusted input.
package conv

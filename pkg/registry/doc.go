// Package registry provides a generic, type-safe registry used to look up
// link modes and record store backends by name. Items are usually registered
// from init() functions in the packages that provide them.
package registry

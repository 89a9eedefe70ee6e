// Package ids generates the identifiers linkvault stores records under.
//
// Batch and entries namespaces are named by random alphanumeric tokens, link
// entries by random fixed-width decimal numbers. None of these are checked
// for uniqueness: a collision overwrites, which is acceptable at the volumes a
// single user produces.
package ids

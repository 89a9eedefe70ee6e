// Package paths provides centralized path handling for linkvault.
// It implements XDG Base Directory specification compliance and
// resolves where the record database, the user config file and the
// log file live.
package paths

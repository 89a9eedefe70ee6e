// Package testutil provides utilities for testing linkvault components.
//
// Key components:
//   - TestEnvironment: a temp-dir sandbox with XDG variables pointed inside
//     it, a record store and a commands.App wired together
//   - Tree helpers: declarative creation of source trees
//   - Link assertions: checks on symlinks, hard links and absent paths
//
// Every environment is isolated: tests never see the user's real data or
// config directories.
package testutil

// Package add implements the add command, which interactively records the tracker settings of a
// project in the home configuration file and points the current directory at them.
package add

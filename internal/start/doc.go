// Package start implements the start command, which marks the story of the current branch as started.
package start

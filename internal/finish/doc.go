// Package finish implements the finish command, which commits the staged changes with a message
// that closes the story of the current branch.
package finish

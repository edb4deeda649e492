// Package cli constructs the story_branch command-line interface, wiring the
// Cobra command hierarchy, the application configuration loader and the
// structured logger shared by every command.
package cli

// Package dependencies builds the default collaborators shared by the story_branch commands.
package dependencies

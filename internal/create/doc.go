// Package create implements the create command, which branches from a workable tracker story.
//
// The proposed branch name is the normalized story title suffixed with the story id. Creation is
// refused when an existing branch already references the story or has a similar name.
package create

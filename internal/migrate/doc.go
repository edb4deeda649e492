// Package migrate implements the migrate command, which converts a legacy flat configuration into
// a named entry of the home configuration file.
//
// The legacy view merges PIVOTAL_* environment variables, ./.story_branch and ~/.story_branch in
// that order. Only ~/.story_branch is removed after a successful migration.
package migrate

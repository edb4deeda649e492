// Package gitrepo reads and changes the local git repository on behalf of story_branch.
//
// RepositoryManager lists branches, reports the current branch and working tree
// status, creates branches and records commits through execshell. The matching
// helpers decide whether a proposed branch name collides with an existing one and
// extract story identifiers from branch names.
package gitrepo

// Package config resolves story_branch project configuration.
//
// Configuration lives in four places: PIVOTAL_* environment variables, the
// project pointer file ./.story_branch.yml, the per-project entries of
// ~/.story_branch.yml and the legacy flat file ~/.story_branch. Resolver walks
// them in that order and records which source supplied every value. Migrator
// converts legacy flat files into a named home entry.
package config

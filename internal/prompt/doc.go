// Package prompt asks the user questions on behalf of the story_branch commands.
//
// IOPrompter reads from any io.Reader and suits tests and piped input. TerminalPrompter uses
// peterh/liner so suggested answers can be edited in place.
package prompt

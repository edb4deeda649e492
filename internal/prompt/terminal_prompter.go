package prompt

import (
	"errors"
	"io"

	"github.com/peterh/liner"
)

const suggestionCursorEndConstant = -1

// TerminalPrompter reads answers from the controlling terminal. Suggested answers are pre-filled
// and editable.
type TerminalPrompter struct {
	linePrompter
	state *liner.State
}

// NewTerminalPrompter takes over the terminal until Close is called. Option lists and notices go to output.
func NewTerminalPrompter(output io.Writer) *TerminalPrompter {
	state := liner.NewLiner()
	state.SetCtrlCAborts(true)
	return &TerminalPrompter{
		linePrompter: linePrompter{reader: linerLineReader{state: state}, writer: newFlushingWriter(output)},
		state:        state,
	}
}

// Close restores the terminal mode.
func (prompter *TerminalPrompter) Close() error {
	return prompter.state.Close()
}

type linerLineReader struct {
	state *liner.State
}

func (lineReader linerLineReader) readLine(prompt string, suggestion string) (string, error) {
	var (
		line      string
		readError error
	)
	if len(suggestion) > 0 {
		line, readError = lineReader.state.PromptWithSuggestion(prompt, suggestion, suggestionCursorEndConstant)
	} else {
		line, readError = lineReader.state.Prompt(prompt)
	}
	if readError != nil {
		if errors.Is(readError, liner.ErrPromptAborted) || errors.Is(readError, io.EOF) {
			return "", ErrPromptAborted
		}
		return "", readError
	}
	return line, nil
}

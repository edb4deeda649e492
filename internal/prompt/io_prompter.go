package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// IOPrompter reads answers line by line from an io.Reader. Suggested answers are shown in brackets
// and accepted by submitting an empty line.
type IOPrompter struct {
	linePrompter
}

// NewIOPrompter constructs a prompter from the provided reader and writer.
func NewIOPrompter(input io.Reader, output io.Writer) *IOPrompter {
	writer := newFlushingWriter(output)
	reader := &bufferedLineReader{reader: bufio.NewReader(input), writer: writer}
	return &IOPrompter{linePrompter: linePrompter{reader: reader, writer: writer}}
}

type bufferedLineReader struct {
	reader *bufio.Reader
	writer io.Writer
}

func (lineReader *bufferedLineReader) readLine(prompt string, suggestion string) (string, error) {
	displayedPrompt := prompt
	if len(suggestion) > 0 {
		displayedPrompt = fmt.Sprintf(questionWithDefaultTemplateConstant, strings.TrimRight(prompt, " "), suggestion)
	}
	if _, writeError := io.WriteString(lineReader.writer, displayedPrompt); writeError != nil {
		return "", writeError
	}

	line, readError := lineReader.reader.ReadString('\n')
	if readError != nil {
		if errors.Is(readError, io.EOF) && len(line) > 0 {
			return line, nil
		}
		if errors.Is(readError, io.EOF) {
			return "", ErrPromptAborted
		}
		return "", readError
	}
	return line, nil
}

package prompt

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
)

const (
	promptAbortedMessageConstant        = "prompt aborted"
	noOptionsMessageConstant            = "no options to select from"
	questionTemplateConstant            = "%s "
	questionWithDefaultTemplateConstant = "%s [%s] "
	confirmationTemplateConstant        = "%s (y/N) "
	optionLineTemplateConstant          = "%d. %s\n"
	selectionRangeTemplateConstant      = "Please enter a number between 1 and %d.\n"
	affirmativeShortResponseConstant    = "y"
	affirmativeLongResponseConstant     = "yes"
)

// ErrPromptAborted indicates the user interrupted a prompt or the input ended.
var ErrPromptAborted = errors.New(promptAbortedMessageConstant)

// ErrNoOptions indicates Select was called without options.
var ErrNoOptions = errors.New(noOptionsMessageConstant)

// Prompter collects answers from the user.
type Prompter interface {
	// Ask returns the answer to question. An empty answer yields defaultValue.
	Ask(question string, defaultValue string) (string, error)
	// Confirm reports whether the user answered y or yes.
	Confirm(question string) (bool, error)
	// Select lists options and returns the zero-based index of the chosen one.
	Select(question string, options []string) (int, error)
}

// lineReader reads one answer, offering suggestion where the input supports it.
type lineReader interface {
	readLine(prompt string, suggestion string) (string, error)
}

// linePrompter implements Prompter on top of a lineReader.
type linePrompter struct {
	reader lineReader
	writer io.Writer
}

func (prompter linePrompter) Ask(question string, defaultValue string) (string, error) {
	answer, readError := prompter.reader.readLine(fmt.Sprintf(questionTemplateConstant, question), defaultValue)
	if readError != nil {
		return "", readError
	}
	trimmedAnswer := strings.TrimSpace(answer)
	if len(trimmedAnswer) == 0 {
		return defaultValue, nil
	}
	return trimmedAnswer, nil
}

func (prompter linePrompter) Confirm(question string) (bool, error) {
	answer, readError := prompter.reader.readLine(fmt.Sprintf(confirmationTemplateConstant, question), "")
	if readError != nil {
		return false, readError
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case affirmativeShortResponseConstant, affirmativeLongResponseConstant:
		return true, nil
	default:
		return false, nil
	}
}

func (prompter linePrompter) Select(question string, options []string) (int, error) {
	if len(options) == 0 {
		return 0, ErrNoOptions
	}
	for optionIndex, option := range options {
		if _, writeError := fmt.Fprintf(prompter.writer, optionLineTemplateConstant, optionIndex+1, option); writeError != nil {
			return 0, writeError
		}
	}

	for {
		answer, readError := prompter.reader.readLine(fmt.Sprintf(questionTemplateConstant, question), "")
		if readError != nil {
			return 0, readError
		}
		selectedNumber, parseError := strconv.Atoi(strings.TrimSpace(answer))
		if parseError == nil && selectedNumber >= 1 && selectedNumber <= len(options) {
			return selectedNumber - 1, nil
		}
		if _, writeError := fmt.Fprintf(prompter.writer, selectionRangeTemplateConstant, len(options)); writeError != nil {
			return 0, writeError
		}
	}
}

// flushingWriter flushes buffered writers after every write so prompts appear before input is read.
type flushingWriter struct {
	writer io.Writer
	mutex  sync.Mutex
}

func newFlushingWriter(writer io.Writer) io.Writer {
	if writer == nil {
		return io.Discard
	}
	if _, alreadyWrapped := writer.(*flushingWriter); alreadyWrapped {
		return writer
	}
	return &flushingWriter{writer: writer}
}

func (writer *flushingWriter) Write(data []byte) (int, error) {
	writer.mutex.Lock()
	defer writer.mutex.Unlock()

	bytesWritten, writeError := writer.writer.Write(data)
	if writeError != nil {
		return bytesWritten, writeError
	}
	if flushableWriter, implementsFlush := writer.writer.(interface{ Flush() error }); implementsFlush {
		if flushError := flushableWriter.Flush(); flushError != nil {
			return bytesWritten, flushError
		}
	}
	return bytesWritten, nil
}

package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	confirmationBannerConstant         = "--------- EXECUTE COMMAND ----------"
	confirmationQuestionTemplateConst  = "Can I execute the command: `%s` with %dms timeout?"
	confirmationInstructionConstant    = "If yes, just press ENTER"
	confirmationReadFailureTemplate    = "unable to read confirmation answer: %w"
	affirmativeShortAnswerConstant     = "y"
	affirmativeLongAnswerConstant      = "yes"
	confirmationPromptNewlineConstant  = "\n"
	confirmationAnswerLineEndByteConst = '\n'
)

// IOConfirmationPrompter asks for permission on an output writer and reads
// the answer from an input reader. Pressing ENTER or answering y/yes accepts;
// any other answer declines. It implements execshell.ConfirmationPrompter.
type IOConfirmationPrompter struct {
	inputReader  *bufio.Reader
	outputWriter io.Writer
}

// NewIOConfirmationPrompter constructs a prompter over the provided streams.
func NewIOConfirmationPrompter(inputReader io.Reader, outputWriter io.Writer) *IOConfirmationPrompter {
	return &IOConfirmationPrompter{
		inputReader:  bufio.NewReader(inputReader),
		outputWriter: outputWriter,
	}
}

// ConfirmExecution presents the command and effective timeout and blocks
// until the operator answers.
func (prompter *IOConfirmationPrompter) ConfirmExecution(commandText string, timeoutMilliseconds int64) (bool, error) {
	fmt.Fprintln(prompter.outputWriter, confirmationBannerConstant)
	fmt.Fprintf(prompter.outputWriter, confirmationQuestionTemplateConst+confirmationPromptNewlineConstant, commandText, timeoutMilliseconds)
	fmt.Fprintln(prompter.outputWriter, confirmationInstructionConstant)

	answerLine, readError := prompter.inputReader.ReadString(confirmationAnswerLineEndByteConst)
	if readError != nil && !errors.Is(readError, io.EOF) {
		return false, fmt.Errorf(confirmationReadFailureTemplate, readError)
	}

	normalizedAnswer := strings.ToLower(strings.TrimSpace(answerLine))
	switch normalizedAnswer {
	case "", affirmativeShortAnswerConstant, affirmativeLongAnswerConstant:
		return true, nil
	default:
		return false, nil
	}
}

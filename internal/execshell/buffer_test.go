package execshell_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/cmdpilot/internal/execshell"
)

const (
	testBufferUnderCapacityCaseNameConstant = "under_capacity"
	testBufferExactCapacityCaseNameConstant = "exact_capacity"
	testBufferEvictsHeadCaseNameConstant    = "evicts_head"
	testBufferManyAppendsCaseNameConstant   = "many_appends_keep_tail"
	testBufferDefaultCapCaseNameConstant    = "non_positive_capacity_uses_default"

	testBufferOverflowLengthConstant = 128
)

func TestTailBufferRetainsTail(testInstance *testing.T) {
	testCases := []struct {
		name            string
		maximumLength   int
		appendedTexts   []string
		expectedContent string
	}{
		{
			name:            testBufferUnderCapacityCaseNameConstant,
			maximumLength:   16,
			appendedTexts:   []string{"alpha\n", "beta\n"},
			expectedContent: "alpha\nbeta\n",
		},
		{
			name:            testBufferExactCapacityCaseNameConstant,
			maximumLength:   6,
			appendedTexts:   []string{"alpha\n"},
			expectedContent: "alpha\n",
		},
		{
			name:            testBufferEvictsHeadCaseNameConstant,
			maximumLength:   8,
			appendedTexts:   []string{"alpha\n", "beta\n"},
			expectedContent: "ha\nbeta\n",
		},
		{
			name:            testBufferManyAppendsCaseNameConstant,
			maximumLength:   5,
			appendedTexts:   []string{"one\n", "two\n", "three\n", "four\n"},
			expectedContent: "four\n",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			tailBuffer := execshell.NewTailBuffer(testCase.maximumLength)
			for _, appendedText := range testCase.appendedTexts {
				tailBuffer.Append(appendedText)
			}

			require.Equal(testInstance, testCase.expectedContent, tailBuffer.String())
			require.LessOrEqual(testInstance, tailBuffer.Length(), testCase.maximumLength)
		})
	}
}

func TestTailBufferNonPositiveCapacityFallsBack(testInstance *testing.T) {
	testInstance.Run(testBufferDefaultCapCaseNameConstant, func(testInstance *testing.T) {
		tailBuffer := execshell.NewTailBuffer(0)
		longText := strings.Repeat("x", execshell.DefaultMaximumOutputLength+testBufferOverflowLengthConstant)
		tailBuffer.Append(longText)
		require.Equal(testInstance, execshell.DefaultMaximumOutputLength, tailBuffer.Length())
	})
}

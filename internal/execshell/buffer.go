package execshell

// TailBuffer accumulates text while retaining at most a fixed number of
// trailing characters. Oldest data is evicted first because later output is
// the more diagnostic part of a command run.
type TailBuffer struct {
	maximumLength int
	content       []byte
}

// NewTailBuffer constructs a buffer capped at maximumLength characters.
// Non-positive capacities fall back to DefaultMaximumOutputLength.
func NewTailBuffer(maximumLength int) *TailBuffer {
	if maximumLength <= 0 {
		maximumLength = DefaultMaximumOutputLength
	}
	return &TailBuffer{maximumLength: maximumLength}
}

// Append adds text to the buffer, evicting the head when the cap is exceeded.
func (buffer *TailBuffer) Append(text string) {
	buffer.content = append(buffer.content, text...)
	if len(buffer.content) > buffer.maximumLength {
		overflowLength := len(buffer.content) - buffer.maximumLength
		buffer.content = buffer.content[overflowLength:]
	}
}

// String returns the retained tail.
func (buffer *TailBuffer) String() string {
	return string(buffer.content)
}

// Length reports the number of retained characters.
func (buffer *TailBuffer) Length() int {
	return len(buffer.content)
}

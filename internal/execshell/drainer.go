package execshell

import (
	"bufio"
	"context"
	"io"
)

const (
	lineDelimiterByteConstant        = '\n'
	drainerChannelCapacityConstant   = 256
	drainerReaderBufferSizeConstant  = 64 * 1024
	drainerMaximumLineLengthConstant = 1024 * 1024
)

// StreamDrainer moves one output stream line by line onto a channel from a
// dedicated goroutine so the child process never stalls on a full pipe.
type StreamDrainer struct {
	stream io.ReadCloser
	lines  chan string
}

// NewStreamDrainer wraps the provided stream handle.
func NewStreamDrainer(stream io.ReadCloser) *StreamDrainer {
	return &StreamDrainer{
		stream: stream,
		lines:  make(chan string, drainerChannelCapacityConstant),
	}
}

// Lines exposes the drained output. The channel is closed exactly once, when
// the stream reaches end-of-data or the invocation context is cancelled, so a
// consumer observes every line at most once.
func (drainer *StreamDrainer) Lines() <-chan string {
	return drainer.lines
}

// Run reads lines until the stream ends or the context is cancelled. The
// stream handle is closed and the line channel is closed on every exit path.
func (drainer *StreamDrainer) Run(invocationContext context.Context) {
	defer close(drainer.lines)
	defer func() {
		_ = drainer.stream.Close()
	}()

	streamReader := bufio.NewReaderSize(drainer.stream, drainerReaderBufferSizeConstant)

	for {
		lineText, readError := streamReader.ReadString(lineDelimiterByteConstant)

		if len(lineText) > drainerMaximumLineLengthConstant {
			lineText = lineText[len(lineText)-drainerMaximumLineLengthConstant:]
		}

		if len(lineText) > 0 {
			select {
			case drainer.lines <- lineText:
			case <-invocationContext.Done():
				return
			}
		}

		if readError != nil {
			return
		}

		select {
		case <-invocationContext.Done():
			return
		default:
		}
	}
}

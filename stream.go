package reagent

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/helloagents/reagent/internal/buffer"
)

// StreamChunk is one fragment of a streamed response. A chunk with a non-nil
// Err is the last chunk of its stream.
type StreamChunk struct {
	Text string
	Err  error
}

// Stream is a lazy, finite, non-restartable sequence of text fragments.
// Chunks may only be consumed once; the channel is closed when the response
// is complete.
type Stream interface {
	Chunks() <-chan StreamChunk
}

// ChunkHandler receives each streamed fragment, e.g. for live display.
type ChunkHandler func(fragment string)

// ChunkStream is the standard Stream implementation used by model adapters.
//
// Producers call Send for every fragment, then exactly one of Close or Fail.
// Send never blocks, even when nobody is reading yet.
type ChunkStream struct {
	buf  *buffer.Unbounded[StreamChunk]
	once sync.Once
}

// NewChunkStream creates an open stream.
func NewChunkStream() *ChunkStream {
	return &ChunkStream{buf: buffer.NewUnbounded[StreamChunk]()}
}

// Send queues a fragment. Empty fragments and fragments sent after Close or
// Fail are ignored.
func (s *ChunkStream) Send(text string) {
	if text == "" {
		return
	}
	s.buf.Send(StreamChunk{Text: text})
}

// Fail terminates the stream with err.
func (s *ChunkStream) Fail(err error) {
	s.once.Do(func() {
		s.buf.Send(StreamChunk{Err: err})
		s.buf.Close()
	})
}

// Close terminates the stream successfully.
func (s *ChunkStream) Close() {
	s.once.Do(s.buf.Close)
}

// Chunks returns the fragment channel.
func (s *ChunkStream) Chunks() <-chan StreamChunk {
	return s.buf.Receive()
}

// Collect consumes stream and returns the concatenated text.
//
// Each fragment goes to handler; when handler is nil it is written to sink
// instead, followed by a trailing newline once the stream ends. A nil sink
// with a nil handler discards fragments. On a chunk error, the text received
// so far is returned with the error and the rest of the stream is drained in
// the background.
func Collect(stream Stream, handler ChunkHandler, sink io.Writer) (string, error) {
	var sb strings.Builder
	wrote := false

	ch := stream.Chunks()
	for chunk := range ch {
		if chunk.Err != nil {
			go func() {
				for range ch {
				}
			}()
			return sb.String(), chunk.Err
		}
		sb.WriteString(chunk.Text)
		switch {
		case handler != nil:
			handler(chunk.Text)
		case sink != nil:
			fmt.Fprint(sink, chunk.Text)
			wrote = true
		}
	}

	if wrote {
		fmt.Fprintln(sink)
	}
	return sb.String(), nil
}

package host

import (
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-dom/errors"
)

// Stream is a guest output stream.
type Stream uint32

const (
	Stdout Stream = 1
	Stderr Stream = 2
)

func (s Stream) String() string {
	if s == Stderr {
		return "stderr"
	}
	return "stdout"
}

// Sink receives complete lines of guest output.
type Sink func(stream Stream, line string)

// Console line-buffers guest writes per stream. Complete lines go to the
// logger (stdout at info, stderr at error) and to the sink if one is set.
type Console struct {
	logger  *zap.Logger
	sink    Sink
	partial [3]strings.Builder
}

// NewConsole creates a console. sink may be nil.
func NewConsole(logger *zap.Logger, sink Sink) *Console {
	if logger == nil {
		logger = Logger()
	}
	return &Console{logger: logger.With(zap.String("component", "console")), sink: sink}
}

// Write appends s to the stream's buffer and emits every completed line.
func (c *Console) Write(stream Stream, s string) error {
	if stream != Stdout && stream != Stderr {
		return errors.New(errors.PhaseHost, errors.KindInvalidInput).
			Path("odin_env", "write").
			Value(uint32(stream)).
			Detail("invalid fd %d: %s", uint32(stream), strings.TrimRight(s, "\n")).
			Build()
	}
	buf := &c.partial[stream]
	for {
		i := strings.IndexByte(s, '\n')
		if i < 0 {
			buf.WriteString(s)
			return nil
		}
		buf.WriteString(s[:i])
		c.emit(stream, buf.String())
		buf.Reset()
		s = s[i+1:]
	}
}

// Flush emits any unterminated output.
func (c *Console) Flush() {
	for _, stream := range []Stream{Stdout, Stderr} {
		buf := &c.partial[stream]
		if buf.Len() > 0 {
			c.emit(stream, buf.String())
			buf.Reset()
		}
	}
}

func (c *Console) emit(stream Stream, line string) {
	if stream == Stderr {
		c.logger.Error(line, zap.Stringer("stream", stream))
	} else {
		c.logger.Info(line, zap.Stringer("stream", stream))
	}
	if c.sink != nil {
		c.sink(stream, line)
	}
}

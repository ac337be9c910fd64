package triggerz

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

// Writer receives one line per notification observed by Dump.
type Writer interface {
	WriteLine(tag, text string)
}

// WriterFunc adapts a function to the Writer interface.
type WriterFunc func(tag, text string)

// WriteLine calls f(tag, text).
func (f WriterFunc) WriteLine(tag, text string) { f(tag, text) }

// NopWriter discards every line.
var NopWriter Writer = WriterFunc(func(string, string) {})

type lineWriter struct {
	w  io.Writer
	mu sync.Mutex
}

// NewLineWriter writes "tag text" lines to w. An empty tag writes the text
// alone. Writes from different goroutines do not interleave.
func NewLineWriter(w io.Writer) Writer {
	return &lineWriter{w: w}
}

func (l *lineWriter) WriteLine(tag, text string) {
	line := strings.TrimSpace(tag + " " + text)
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, line)
}

// NewSlogWriter logs every line at debug level with the tag as an attribute.
func NewSlogWriter(logger *slog.Logger) Writer {
	return WriterFunc(func(tag, text string) {
		logger.Debug(text, "tag", tag)
	})
}

// Dump passes source through unchanged while writing every notification to w
// before forwarding it. It is used for tracing, debugging and recording
// playgrounds. A panicking Writer is reported to logger at warn level and
// otherwise ignored; a nil logger discards the report.
//
// When to use:
//   - Trace a pipeline stage while debugging
//   - Record a run as text for golden-file comparison
//   - Audit which events reached a trigger
//
// Example:
//
//	out := triggerz.NewLineWriter(os.Stderr)
//	traced := triggerz.Dump(events, out, "events", logger)
//	// events OnNext(1)
//	// events OnCompleted()
//
// Parameters:
//   - source: Stream to observe
//   - w: Destination of the trace lines
//   - tag: Prefix identifying the stage
//   - logger: Receives writer panics
func Dump[T any](source Observable[T], w Writer, tag string, logger *slog.Logger) Observable[T] {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return Create(func(o Observer[T]) Disposable {
		write := func(n Notification[T]) {
			defer func() {
				if r := recover(); r != nil {
					logger.Warn("dump writer panicked", "tag", tag, "panic", r)
				}
			}()
			w.WriteLine(tag, n.String())
		}

		return source.Subscribe(ObserverFuncs[T]{
			Next: func(v T) {
				write(NextOf(v))
				o.OnNext(v)
			},
			Error: func(err error) {
				write(ErrorOf[T](err))
				o.OnError(err)
			},
			Complete: func() {
				write(CompleteOf[T]())
				o.OnComplete()
			},
		})
	})
}

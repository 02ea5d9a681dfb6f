package logger

import (
	"bufio"
	"errors"
	"io"
	"sync"
)

// asyncWriter moves log output off the caller's goroutine. Lines are queued,
// written to every sink by a single goroutine and flushed whenever the queue
// runs dry, so bursts are batched and quiet periods still reach the sinks.
type asyncWriter struct {
	queue   chan []byte
	flushes chan chan error
	done    chan struct{}
	close   sync.Once

	mu    sync.Mutex
	err   error
	sinks []*bufio.Writer
}

func newAsyncWriter(writers []io.Writer, bufSize int) *asyncWriter {
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}
	w := &asyncWriter{
		queue:   make(chan []byte, 256),
		flushes: make(chan chan error),
		done:    make(chan struct{}),
	}
	for _, out := range writers {
		if out != nil {
			w.sinks = append(w.sinks, bufio.NewWriterSize(out, bufSize))
		}
	}
	go w.run()
	return w
}

func (w *asyncWriter) run() {
	defer close(w.done)
	for {
		select {
		case line, ok := <-w.queue:
			if !ok {
				w.fail(w.flush())
				return
			}
			w.fail(w.write(line))
			if len(w.queue) == 0 {
				w.fail(w.flush())
			}
		case ack := <-w.flushes:
			for len(w.queue) > 0 {
				if line, ok := <-w.queue; ok {
					w.fail(w.write(line))
				}
			}
			ack <- w.flush()
		}
	}
}

// Write queues a copy of p. It blocks when the queue is full.
func (w *asyncWriter) Write(p []byte) error {
	if err := w.Err(); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}
	w.queue <- append([]byte(nil), p...)
	return nil
}

// Flush waits until queued lines written so far reach the sinks.
func (w *asyncWriter) Flush() error {
	ack := make(chan error, 1)
	select {
	case w.flushes <- ack:
		return errors.Join(<-ack, w.Err())
	case <-w.done:
		return w.Err()
	}
}

// Close drains the queue, flushes the sinks and reports the first write error.
func (w *asyncWriter) Close() error {
	w.close.Do(func() { close(w.queue) })
	<-w.done
	return w.Err()
}

// Err returns the first write error, if any.
func (w *asyncWriter) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

func (w *asyncWriter) fail(err error) {
	if err == nil {
		return
	}
	w.mu.Lock()
	if w.err == nil {
		w.err = err
	}
	w.mu.Unlock()
}

func (w *asyncWriter) write(p []byte) error {
	for _, s := range w.sinks {
		if _, err := s.Write(p); err != nil {
			return err
		}
	}
	return nil
}

func (w *asyncWriter) flush() error {
	var errs []error
	for _, s := range w.sinks {
		if err := s.Flush(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

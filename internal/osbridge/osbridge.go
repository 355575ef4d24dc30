// Package osbridge speaks the line-delimited JSON protocol between buzzbuster
// and the OS notification listener. Events arrive one JSON object per line;
// commands are written back the same way.
package osbridge

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/rcliao/buzzbuster/internal/model"
)

const maxLineBytes = 1 << 20

// ErrLineTooLong is carried by a LineError for an event line over the size
// limit. The rest of that line is discarded.
var ErrLineTooLong = errors.New("line too long")

// LineError reports an event line that could not be decoded. Decoding may
// continue after it.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string { return fmt.Sprintf("line %d: %v", e.Line, e.Err) }
func (e *LineError) Unwrap() error { return e.Err }

// Decoder reads posted-notification events.
type Decoder struct {
	r    *bufio.Reader
	line int
}

// NewDecoder creates a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReaderSize(r, 64*1024)}
}

// Next returns the next event. Blank lines are skipped. It returns io.EOF when
// the input ends and a *LineError for a malformed or oversized line.
func (d *Decoder) Next() (model.PostedNotification, error) {
	for {
		b, err := d.readLine()
		if err != nil && !errors.Is(err, ErrLineTooLong) {
			return model.PostedNotification{}, err
		}
		d.line++
		if err != nil {
			return model.PostedNotification{}, &LineError{Line: d.line, Err: err}
		}
		b = bytes.TrimSpace(b)
		if len(b) == 0 {
			continue
		}
		var n model.PostedNotification
		if err := json.Unmarshal(b, &n); err != nil {
			return model.PostedNotification{}, &LineError{Line: d.line, Err: err}
		}
		if n.PackageName == "" || n.DeliveryKey == "" {
			return model.PostedNotification{}, &LineError{Line: d.line, Err: fmt.Errorf("package_name and key are required")}
		}
		return n, nil
	}
}

// readLine returns the next line including its newline. A final line without
// one is returned as is; io.EOF follows it.
func (d *Decoder) readLine() ([]byte, error) {
	var (
		buf     []byte
		tooLong bool
	)
	for {
		chunk, err := d.r.ReadSlice('\n')
		if !tooLong {
			if len(buf)+len(chunk) > maxLineBytes+1 {
				tooLong, buf = true, nil
			} else {
				buf = append(buf, chunk...)
			}
		}
		switch {
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case err == nil || (errors.Is(err, io.EOF) && (tooLong || len(buf) > 0)):
			if tooLong {
				return nil, ErrLineTooLong
			}
			return buf, nil
		default:
			return nil, err
		}
	}
}

type command struct {
	Op string `json:"op"`
	*model.CancelNotification
	*model.PostNotification
}

// Emitter writes commands. It is safe for concurrent use; each command is one
// complete line.
type Emitter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewEmitter creates an Emitter writing to w.
func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{w: w}
}

// Cancel asks the OS to withdraw a notification.
func (e *Emitter) Cancel(ctx context.Context, cmd model.CancelNotification) error {
	return e.emit(ctx, command{Op: "cancel", CancelNotification: &cmd})
}

// Post asks the OS to show a notification.
func (e *Emitter) Post(ctx context.Context, cmd model.PostNotification) error {
	return e.emit(ctx, command{Op: "post", PostNotification: &cmd})
}

func (e *Emitter) emit(ctx context.Context, c command) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	b = append(b, '\n')

	e.mu.Lock()
	defer e.mu.Unlock()
	_, err = e.w.Write(b)
	return err
}

// Package reporter uploads hardware injection events to the event database.
package reporter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hwinj/hwinj/internal/constants"
	"github.com/hwinj/hwinj/internal/gracedb"
)

// ErrNoInstrument is returned when reporting an event without any instrument.
var ErrNoInstrument = errors.New("no instrument given")

// Error is returned when a call to the event database fails.
type Error struct {
	// Op is the failed operation: report, annotate or label.
	Op      string
	EventID string
	Err     error
}

func (e *Error) Error() string {
	if e.EventID == "" {
		return fmt.Sprintf("could not %s event: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("could not %s event %s: %v", e.Op, e.EventID, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

type eventDatabase interface {
	CreateEvent(ctx context.Context, ev gracedb.Event) (string, error)
	WriteLog(ctx context.Context, id, message, tag string) error
	AddLabel(ctx context.Context, id, label string) error
}

// Reporter creates and updates injection events.
type Reporter struct {
	db       eventDatabase
	fileName string
}

type options struct {
	fileName string
}

// Options represents an optional function to override Reporter default values.
type Options func(*options)

// WithFileName sets the name given to the event file of created events.
func WithFileName(name string) Options {
	return func(o *options) {
		if name != "" {
			o.fileName = name
		}
	}
}

// New returns a Reporter sending its requests to db.
func New(db eventDatabase, args ...Options) *Reporter {
	opts := options{
		fileName: constants.DefaultEventFileName,
	}
	for _, opt := range args {
		opt(&opts)
	}

	return &Reporter{db: db, fileName: opts.fileName}
}

// Report creates an event in group for pipeline, carrying payload as its event file, and returns
// its identifier. The event instrument is the comma separated list of instruments.
func (r *Reporter) Report(ctx context.Context, payload []byte, instruments []string, pipeline, group string) (string, error) {
	if len(instruments) == 0 {
		return "", &Error{Op: "report", Err: ErrNoInstrument}
	}

	ev := gracedb.Event{
		Group:      group,
		Pipeline:   pipeline,
		Instrument: strings.Join(instruments, ","),
		FileName:   r.fileName,
		Content:    payload,
	}
	id, err := r.db.CreateEvent(ctx, ev)
	if err != nil {
		return "", &Error{Op: "report", Err: err}
	}

	slog.Debug("Reported injection", "id", id, "group", group, "instrument", ev.Instrument)
	return id, nil
}

// Annotate appends message to the log of event id with tag. An empty tag uses the default
// analyst comments tag.
func (r *Reporter) Annotate(ctx context.Context, id, message, tag string) error {
	if tag == "" {
		tag = constants.DefaultLogTag
	}
	if err := r.db.WriteLog(ctx, id, message, tag); err != nil {
		return &Error{Op: "annotate", EventID: id, Err: err}
	}
	return nil
}

// Label attaches label to event id.
func (r *Reporter) Label(ctx context.Context, id, label string) error {
	if err := r.db.AddLabel(ctx, id, label); err != nil {
		return &Error{Op: "label", EventID: id, Err: err}
	}
	return nil
}

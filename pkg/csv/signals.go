package csv

import (
	"context"
	"time"

	"github.com/zoobzio/capitan"
)

// Signals for table and file events.
var (
	SignalParseStart        = capitan.NewSignal("csv.parse.start", "Text parse beginning")
	SignalParseComplete     = capitan.NewSignal("csv.parse.complete", "Text parse finished")
	SignalFileParseStart    = capitan.NewSignal("csv.file.parse.start", "File parse beginning")
	SignalFileParseComplete = capitan.NewSignal("csv.file.parse.complete", "File parse finished")
	SignalStreamOpen        = capitan.NewSignal("csv.stream.open", "Streaming file opened")
	SignalStreamClose       = capitan.NewSignal("csv.stream.close", "Streaming file closed")
	SignalSaveStart         = capitan.NewSignal("csv.save.start", "Save to file beginning")
	SignalSaveComplete      = capitan.NewSignal("csv.save.complete", "Save to file finished")
	SignalEncodingChanged   = capitan.NewSignal("csv.encoding.changed", "Stored values re-encoded")
)

// Keys for typed event data.
var (
	KeyPath     = capitan.NewStringKey("path")
	KeyMimeType = capitan.NewStringKey("mime_type")
	KeyEncoding = capitan.NewStringKey("encoding")
	KeyRows     = capitan.NewIntKey("rows")
	KeySize     = capitan.NewIntKey("size")
	KeyDuration = capitan.NewDurationKey("duration")
	KeyError    = capitan.NewErrorKey("error")
)

// emitParseStart emits an event when a text parse begins.
func emitParseStart(ctx context.Context, size int) {
	capitan.Emit(ctx, SignalParseStart, KeySize.Field(size))
}

// emitParseComplete emits an event when a text parse finishes.
func emitParseComplete(ctx context.Context, rows int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyRows.Field(rows),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalParseComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalParseComplete, fields...)
	}
}

// emitFileParseStart emits an event when a file parse begins.
func emitFileParseStart(ctx context.Context, path string) {
	capitan.Emit(ctx, SignalFileParseStart, KeyPath.Field(path))
}

// emitFileParseComplete emits an event when a file parse finishes.
func emitFileParseComplete(ctx context.Context, path, mimeType string, rows int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyPath.Field(path),
		KeyMimeType.Field(mimeType),
		KeyRows.Field(rows),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalFileParseComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalFileParseComplete, fields...)
	}
}

// emitStreamOpen emits an event when a streaming file is opened.
func emitStreamOpen(ctx context.Context, path, mimeType string) {
	capitan.Emit(ctx, SignalStreamOpen,
		KeyPath.Field(path),
		KeyMimeType.Field(mimeType),
	)
}

// emitStreamClose emits an event when a streaming file is released.
func emitStreamClose(ctx context.Context, path string, rows int, err error) {
	fields := []capitan.Field{
		KeyPath.Field(path),
		KeyRows.Field(rows),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalStreamClose, fields...)
	} else {
		capitan.Emit(ctx, SignalStreamClose, fields...)
	}
}

// emitSaveStart emits an event when a save begins.
func emitSaveStart(ctx context.Context, path string) {
	capitan.Emit(ctx, SignalSaveStart, KeyPath.Field(path))
}

// emitSaveComplete emits an event when a save finishes.
func emitSaveComplete(ctx context.Context, path string, size int, duration time.Duration, err error) {
	fields := []capitan.Field{
		KeyPath.Field(path),
		KeySize.Field(size),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalSaveComplete, fields...)
	} else {
		capitan.Emit(ctx, SignalSaveComplete, fields...)
	}
}

// emitEncodingChanged emits an event after stored values were re-encoded.
func emitEncodingChanged(ctx context.Context, encoding string, rows int) {
	capitan.Emit(ctx, SignalEncodingChanged,
		KeyEncoding.Field(encoding),
		KeyRows.Field(rows),
	)
}

package csv

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// emptyMimeType is reported for zero-length files, which carry no signature.
const emptyMimeType = "text/plain"

// ParseFile replaces the table's contents with the records in the file at path.
//
// The path must name an existing regular file (ErrFileNotFound) whose detected
// MIME type is allowlisted (ErrWrongMimeType). Open and read failures wrap
// ErrFileNotReadable.
//
// Example:
//
//	t, _ := csv.New(csv.DefaultConfig())
//	if err := t.ParseFile(ctx, "fruits.csv"); errors.Is(err, csv.ErrWrongMimeType) {
//	    // not a CSV file
//	}
func (t *Table) ParseFile(ctx context.Context, path string) (err error) {
	started := time.Now()
	var mimeType string
	emitFileParseStart(ctx, path)
	defer func() {
		rows := 0
		if err == nil {
			rows = len(t.rows)
		}
		emitFileParseComplete(ctx, path, mimeType, rows, time.Since(started), err)
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	mimeType, err = checkFile(path, t.cfg.MimeTypes)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return &FileError{Path: path, Err: ErrFileNotReadable, Cause: err}
	}
	return t.parseContext(ctx, string(data))
}

// ParseReader replaces the table's contents with everything read from r.
func (t *Table) ParseReader(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return t.Parse(string(data))
}

// SaveToFile writes the serialized table to path, creating it with mode 0644
// if needed. The write happens under an exclusive advisory lock and the file
// is truncated only once the lock is held. It returns the number of bytes
// written. Failures wrap ErrFileNotWritable.
func (t *Table) SaveToFile(ctx context.Context, path string) (n int, err error) {
	started := time.Now()
	emitSaveStart(ctx, path)
	defer func() {
		emitSaveComplete(ctx, path, n, time.Since(started), err)
	}()

	if err := ctx.Err(); err != nil {
		return 0, err
	}
	data := t.Serialize()

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return 0, &FileError{Path: path, Err: ErrFileNotWritable, Cause: err}
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = &FileError{Path: path, Err: ErrFileNotWritable, Cause: cerr}
		}
	}()

	if err := lockFile(f); err != nil {
		return 0, &FileError{Path: path, Err: ErrFileNotWritable, Cause: err}
	}
	defer unlockFile(f)

	if err := f.Truncate(0); err != nil {
		return 0, &FileError{Path: path, Err: ErrFileNotWritable, Cause: err}
	}
	n, err = io.WriteString(f, data)
	if err != nil {
		return n, &FileError{Path: path, Err: ErrFileNotWritable, Cause: err}
	}
	return n, nil
}

// checkFile verifies that path is a regular file with an allowlisted MIME
// type and returns the detected type.
func checkFile(path string, allowed []string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &FileError{Path: path, Err: ErrFileNotFound, Cause: err}
		}
		return "", &FileError{Path: path, Err: ErrFileNotReadable, Cause: err}
	}
	if !info.Mode().IsRegular() {
		return "", &FileError{Path: path, Err: ErrFileNotFound}
	}
	if info.Size() == 0 {
		return emptyMimeType, nil
	}

	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return "", &FileError{Path: path, Err: ErrFileNotReadable, Cause: err}
	}
	if !mimeAllowed(mt, allowed) {
		return mt.String(), &FileError{Path: path, MimeType: mt.String(), Err: ErrWrongMimeType}
	}
	return mt.String(), nil
}

// mimeAllowed reports whether mt or one of its ancestors is in allowed.
// The generic octet-stream root never matches, so binary files are rejected
// even though every type descends from it.
func mimeAllowed(mt *mimetype.MIME, allowed []string) bool {
	for m := mt; m != nil; m = m.Parent() {
		if m.Is("application/octet-stream") {
			return false
		}
		for _, a := range allowed {
			if m.Is(strings.TrimSpace(a)) {
				return true
			}
		}
	}
	return false
}

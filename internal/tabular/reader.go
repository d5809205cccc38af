// =============================================================================
// Kohesio Validator - Tabular Reader
// =============================================================================
//
// This module streams records out of a delimited text file. It replaces
// encoding/csv because the quote character is supplied by the caller and
// encoding/csv only understands '"'.
//
// PARSING RULES (RFC 4180 style):
//   - The first record is the header row.
//   - Quoted fields may contain delimiters, line terminators and doubled
//     quote characters (a doubled quote is a literal quote).
//   - Whitespace around a field, outside of quotes, is ignored.
//   - A record ends at '\n'. A '\r' directly before it is dropped with the
//     surrounding whitespace.
//   - Completely empty lines are skipped but still counted.
//   - A UTF-8 byte order mark at the very start of the stream is discarded
//     before parsing begins.
//
// LINE COUNTING:
//   CurrentLineNumber returns the number of line terminators consumed so far,
//   including the ones embedded in quoted fields. For a record ended by a
//   terminator this is the 1-based line the record ends on. For a final record
//   without a trailing terminator the value is one less; Record.Terminated
//   lets the caller detect and correct that case.
//
// =============================================================================

package tabular

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
)

// utf8BOM is the byte sequence stripped from the start of the stream.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrInvalidOptions is returned when the delimiter or quote settings
	// cannot be used to parse a file.
	ErrInvalidOptions = errors.New("invalid reader options")

	// ErrUnterminatedQuote is returned when the stream ends inside a quoted field.
	ErrUnterminatedQuote = errors.New("end of input reached before quoted field was closed")

	// ErrInvalidCharAfterQuote is returned when something other than whitespace
	// sits between a closing quote and the next delimiter or line end.
	ErrInvalidCharAfterQuote = errors.New("invalid character between closing quote and delimiter")
)

// ParseError describes malformed framing in the input stream.
type ParseError struct {
	// Line is the 1-based line on which the problem was detected.
	Line int64

	// Err is the underlying cause (one of the Err* values above).
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error on line %d: %v", e.Line, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// =============================================================================
// OPTIONS
// =============================================================================

// Options controls how fields are separated and quoted.
type Options struct {
	// Delimiter separates fields within a record.
	Delimiter rune

	// Quote encloses fields that contain delimiters, quotes or line breaks.
	Quote rune
}

// DefaultOptions returns comma-separated, double-quoted options.
func DefaultOptions() Options {
	return Options{Delimiter: ',', Quote: '"'}
}

// Validate checks that the options describe a parseable format.
func (o Options) Validate() error {
	switch {
	case o.Delimiter == 0:
		return fmt.Errorf("%w: delimiter is not set", ErrInvalidOptions)
	case o.Quote == 0:
		return fmt.Errorf("%w: quote is not set", ErrInvalidOptions)
	case o.Delimiter == o.Quote:
		return fmt.Errorf("%w: delimiter and quote are both %q", ErrInvalidOptions, o.Delimiter)
	case isLineBreak(o.Delimiter) || isLineBreak(o.Quote):
		return fmt.Errorf("%w: delimiter and quote cannot be line breaks", ErrInvalidOptions)
	}
	return nil
}

func isLineBreak(r rune) bool {
	return r == '\n' || r == '\r'
}

// =============================================================================
// READER
// =============================================================================

// Reader streams records from a delimited file.
//
// USAGE:
//
//	reader, err := tabular.Open(path, opts)
//	if err != nil {
//	    return err
//	}
//	defer reader.Close()
//
//	for reader.Next() {
//	    record := reader.Record()
//	    // ...
//	}
//
//	if err := reader.Err(); err != nil {
//	    return err
//	}
type Reader struct {
	opts   Options
	in     *bufio.Reader
	closer io.Closer

	header *Header
	record *Record

	// line counts line terminators consumed so far.
	line int64

	err  error
	done bool
}

// Open opens the file at path and reads its header row.
// The returned Reader owns the file; Close releases it.
func Open(path string, opts Options) (*Reader, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	reader, err := newReader(file, opts)
	if err != nil {
		file.Close()
		return nil, err
	}
	reader.closer = file

	return reader, nil
}

// NewReader reads the header row from r and returns a Reader positioned on
// the first data record. Closing the Reader does not close r.
func NewReader(r io.Reader, opts Options) (*Reader, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return newReader(r, opts)
}

func newReader(r io.Reader, opts Options) (*Reader, error) {
	reader := &Reader{
		opts: opts,
		in:   bufio.NewReader(r),
	}

	if err := reader.skipBOM(); err != nil {
		return nil, err
	}

	if err := reader.readHeader(); err != nil {
		return nil, err
	}

	return reader, nil
}

// skipBOM discards a leading UTF-8 byte order mark so it never ends up in
// the first header name.
func (r *Reader) skipBOM() error {
	prefix, err := r.in.Peek(len(utf8BOM))
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read input: %w", err)
	}
	if bytes.Equal(prefix, utf8BOM) {
		if _, err := r.in.Discard(len(utf8BOM)); err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
	}
	return nil
}

// readHeader reads the first record and turns it into the header set.
// An empty stream yields an empty header and no records.
func (r *Reader) readHeader() error {
	fields, _, err := r.readRecord()
	if err == io.EOF {
		r.header = newHeader(nil)
		r.done = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("error reading header row: %w", err)
	}

	r.header = newHeader(fields)
	return nil
}

// Header returns the header set read from the first row.
func (r *Reader) Header() *Header {
	return r.header
}

// Next advances to the next record. It returns false at the end of the
// stream or on error; check Err to tell the two apart.
func (r *Reader) Next() bool {
	if r.err != nil || r.done {
		return false
	}

	fields, terminated, err := r.readRecord()
	if err == io.EOF {
		r.done = true
		r.record = nil
		return false
	}
	if err != nil {
		r.err = err
		r.record = nil
		return false
	}

	r.record = &Record{
		header:     r.header,
		values:     fields,
		terminated: terminated,
	}
	return true
}

// Record returns the record produced by the last successful call to Next.
func (r *Reader) Record() *Record {
	return r.record
}

// CurrentLineNumber returns the number of line terminators consumed so far.
func (r *Reader) CurrentLineNumber() int64 {
	return r.line
}

// Err returns the first error encountered while reading records.
func (r *Reader) Err() error {
	return r.err
}

// Close releases the underlying file when the Reader was created by Open.
// It is safe to call more than once.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	closer := r.closer
	r.closer = nil
	return closer.Close()
}

// =============================================================================
// RECORD PARSING
// =============================================================================

// fieldEnd tells the record loop what stopped a field.
type fieldEnd int

const (
	endDelimiter fieldEnd = iota
	endLine
	endStream
)

// readRecord parses the next non-empty record. It returns io.EOF when the
// stream holds no further records. terminated reports whether the record
// ended with a line terminator.
func (r *Reader) readRecord() ([]string, bool, error) {
	for {
		blank, err := r.skipBlankLine()
		if err != nil {
			return nil, false, err
		}
		if !blank {
			break
		}
	}

	var fields []string
	for {
		field, end, err := r.parseField()
		if err != nil {
			return nil, false, err
		}
		fields = append(fields, field)

		switch end {
		case endLine:
			return fields, true, nil
		case endStream:
			return fields, false, nil
		}
	}
}

// skipBlankLine consumes a line that holds nothing but its terminator.
// It returns io.EOF when the stream is exhausted.
func (r *Reader) skipBlankLine() (bool, error) {
	next, err := r.in.Peek(1)
	if len(next) == 0 {
		if err == io.EOF {
			return false, io.EOF
		}
		return false, fmt.Errorf("failed to read input: %w", err)
	}

	switch next[0] {
	case '\n':
		r.in.Discard(1)
		r.line++
		return true, nil
	case '\r':
		pair, _ := r.in.Peek(2)
		if len(pair) == 2 && pair[1] == '\n' {
			r.in.Discard(2)
			r.line++
			return true, nil
		}
	}

	return false, nil
}

// parseField reads one field, quoted or not, and reports what ended it.
func (r *Reader) parseField() (string, fieldEnd, error) {
	ch, err := r.skipSpace()
	if err == io.EOF {
		return "", endStream, nil
	}
	if err != nil {
		return "", 0, err
	}

	if ch == r.opts.Quote {
		return r.parseQuoted()
	}

	var value strings.Builder
	for {
		switch ch {
		case r.opts.Delimiter:
			return r.trimRight(value.String()), endDelimiter, nil
		case '\n':
			r.line++
			return r.trimRight(value.String()), endLine, nil
		}

		value.WriteRune(ch)

		ch, err = r.readRune()
		if err == io.EOF {
			return r.trimRight(value.String()), endStream, nil
		}
		if err != nil {
			return "", 0, err
		}
	}
}

// parseQuoted reads a quoted field. The opening quote has been consumed.
func (r *Reader) parseQuoted() (string, fieldEnd, error) {
	startLine := r.line + 1

	var value strings.Builder
	for {
		ch, err := r.readRune()
		if err == io.EOF {
			return "", 0, &ParseError{Line: startLine, Err: ErrUnterminatedQuote}
		}
		if err != nil {
			return "", 0, err
		}

		if ch != r.opts.Quote {
			if ch == '\n' {
				r.line++
			}
			value.WriteRune(ch)
			continue
		}

		// A quote is either the first half of an escaped quote or the close.
		next, err := r.readRune()
		if err == io.EOF {
			return value.String(), endStream, nil
		}
		if err != nil {
			return "", 0, err
		}
		if next == r.opts.Quote {
			value.WriteRune(r.opts.Quote)
			continue
		}

		return r.afterQuote(value.String(), next)
	}
}

// afterQuote skips whitespace that follows a closing quote and expects a
// delimiter, a line end or the end of the stream.
func (r *Reader) afterQuote(value string, ch rune) (string, fieldEnd, error) {
	for {
		switch {
		case ch == r.opts.Delimiter:
			return value, endDelimiter, nil
		case ch == '\n':
			r.line++
			return value, endLine, nil
		case !r.isSpace(ch):
			return "", 0, &ParseError{Line: r.line + 1, Err: ErrInvalidCharAfterQuote}
		}

		var err error
		ch, err = r.readRune()
		if err == io.EOF {
			return value, endStream, nil
		}
		if err != nil {
			return "", 0, err
		}
	}
}

// skipSpace returns the first rune that is not surrounding whitespace.
// Line feeds and the delimiter are never skipped.
func (r *Reader) skipSpace() (rune, error) {
	for {
		ch, err := r.readRune()
		if err != nil {
			return 0, err
		}
		if ch == '\n' || !r.isSpace(ch) {
			return ch, nil
		}
	}
}

func (r *Reader) readRune() (rune, error) {
	ch, _, err := r.in.ReadRune()
	if err != nil && err != io.EOF {
		return 0, fmt.Errorf("failed to read input: %w", err)
	}
	return ch, err
}

// isSpace reports whether ch is whitespace that may surround a field.
// A whitespace delimiter (such as tab) is never treated as padding.
func (r *Reader) isSpace(ch rune) bool {
	return ch != r.opts.Delimiter && IsSpace(ch)
}

// IsSpace reports whether ch counts as padding. Non-breaking spaces and
// U+0085 are data; the ASCII separators U+001C to U+001F are padding.
func IsSpace(ch rune) bool {
	switch ch {
	case '\u0085', '\u00A0', '\u2007', '\u202F':
		return false
	case '\u001C', '\u001D', '\u001E', '\u001F':
		return true
	}
	return unicode.IsSpace(ch)
}

// IsBlank reports whether s holds nothing but padding.
func IsBlank(s string) bool {
	return strings.IndexFunc(s, func(ch rune) bool { return !IsSpace(ch) }) < 0
}

func (r *Reader) trimRight(s string) string {
	return strings.TrimRightFunc(s, r.isSpace)
}

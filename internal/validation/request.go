package validation

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/ginjaninja78/kohesio-validator/internal/tabular"
)

// Names of the inputs a caller supplies for a run.
const (
	InputContent   = "contentToValidate"
	InputQuote     = "quote"
	InputDelimiter = "delimiter"
)

var (
	// ErrMissingInput is returned when a mandatory input was not supplied.
	ErrMissingInput = errors.New("required input is missing")

	// ErrInvalidInput is returned when an input was supplied but cannot be used.
	ErrInvalidInput = errors.New("invalid input")
)

// Input is a named value handed over by the caller.
type Input struct {
	Name  string
	Value string
}

// Request describes one validation run.
type Request struct {
	// Path is the file to validate.
	Path string

	// Quote is the field quote character.
	Quote rune

	// Delimiter is the field separator.
	Delimiter rune
}

// ParseRequest builds a Request from named inputs. The content, quote and
// delimiter inputs are all mandatory; only the first character of the quote
// and delimiter values is used.
func ParseRequest(inputs []Input) (Request, error) {
	path, err := lookup(inputs, InputContent)
	if err != nil {
		return Request{}, err
	}
	quote, err := lookup(inputs, InputQuote)
	if err != nil {
		return Request{}, err
	}
	delimiter, err := lookup(inputs, InputDelimiter)
	if err != nil {
		return Request{}, err
	}

	req := Request{
		Path:      path,
		Quote:     firstRune(quote),
		Delimiter: firstRune(delimiter),
	}
	if err := req.Validate(); err != nil {
		return Request{}, err
	}
	return req, nil
}

// lookup returns the value of the first input with the given name.
func lookup(inputs []Input, name string) (string, error) {
	for _, in := range inputs {
		if in.Name == name {
			if in.Value == "" {
				break
			}
			return in.Value, nil
		}
	}
	return "", fmt.Errorf("%w: the [%s] input is required", ErrMissingInput, name)
}

func firstRune(s string) rune {
	r, _ := utf8.DecodeRuneInString(s)
	return r
}

// Validate checks that the request can start a run.
func (r Request) Validate() error {
	if r.Path == "" {
		return fmt.Errorf("%w: the [%s] input is required", ErrMissingInput, InputContent)
	}
	if r.Quote == 0 {
		return fmt.Errorf("%w: the [%s] input is required", ErrMissingInput, InputQuote)
	}
	if r.Delimiter == 0 {
		return fmt.Errorf("%w: the [%s] input is required", ErrMissingInput, InputDelimiter)
	}
	if err := r.Options().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

// Options returns the reader options for the request.
func (r Request) Options() tabular.Options {
	return tabular.Options{
		Delimiter: r.Delimiter,
		Quote:     r.Quote,
	}
}

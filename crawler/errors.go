package crawler

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why an extraction produced no images.
type ErrorKind string

const (
	KindInvalidURL ErrorKind = "invalid_url"
	KindTransport  ErrorKind = "transport"
	KindStatus     ErrorKind = "status"
	KindParse      ErrorKind = "parse"
)

var errNoDocument = errors.New("no document retrieved")

type Error struct {
	Kind       ErrorKind
	URL        string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindStatus:
		return fmt.Sprintf("%s %s: HTTP %d", e.Kind, e.URL, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s %s: %v", e.Kind, e.URL, e.Err)
	default:
		return fmt.Sprintf("%s %s", e.Kind, e.URL)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first *Error in err's chain, or "" if there is none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

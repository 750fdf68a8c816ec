package llm

import (
	"errors"
	"strings"
)

// compose reports failures inside a chain as "[NodeRunError]" or
// "[GraphRunError]" followed by the cause and the node path
var composeErrorPrefixes = []string{"[NodeRunError]", "[GraphRunError]"}

// Cause strips the wrapping a compiled eino chain adds around a component
// error and returns the component's own error.
func Cause(err error) error {
	for err != nil {
		if !isComposeError(err) {
			return err
		}
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
	return err
}

func isComposeError(err error) bool {
	msg := err.Error()
	for _, prefix := range composeErrorPrefixes {
		if strings.HasPrefix(msg, prefix) {
			return true
		}
	}
	return false
}

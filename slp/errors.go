package slp

import (
	"errors"
	"fmt"
)

// ErrMalformedPayload wraps codec failures for commands with a known size.
// These are fatal by default; a tolerant Stream swallows them (see Stream).
var ErrMalformedPayload = errors.New("malformed payload")

// ErrStructural marks payloads whose indices fall outside the range implied
// by the game settings. Always fatal: it means the byte stream has
// desynchronized and any further frame data would be corrupt.
var ErrStructural = errors.New("structural inconsistency")

func errMalformed(cmd Command, detail string) error {
	return fmt.Errorf("%w: %s: %s", ErrMalformedPayload, cmd, detail)
}

func errStructural(cmd Command, detail string) error {
	return fmt.Errorf("%w: %s: %s", ErrStructural, cmd, detail)
}

package mailparse

import (
	"fmt"
	"io"

	"github.com/emersion/go-mbox"
)

// EachMboxMessage parses every message of an mbox stream in order and calls fn
// with its 1-based position. Iteration stops at the first error returned by fn.
func EachMboxMessage(r io.Reader, fn func(n int, msg *Message) error) error {
	mr := mbox.NewReader(r)
	for n := 1; ; n++ {
		raw, err := mr.NextMessage()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read mbox message %d: %w", n, err)
		}

		msg, err := Parse(raw)
		if err != nil {
			return fmt.Errorf("failed to parse mbox message %d: %w", n, err)
		}
		if err := fn(n, msg); err != nil {
			return err
		}
	}
}

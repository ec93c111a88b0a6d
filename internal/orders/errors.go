package orders

import (
	"fmt"
	"strings"
)

// MalformedInputError reports input that cannot be turned into orders.
// The whole batch is rejected when one is returned.
type MalformedInputError struct {
	OrderID string
	Field   string
	Reason  string
	Err     error
}

func (e *MalformedInputError) Error() string {
	var b strings.Builder
	b.WriteString("malformed input")
	if e.OrderID != "" {
		fmt.Fprintf(&b, ": order %s", e.OrderID)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, ": field %q", e.Field)
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *MalformedInputError) Unwrap() error { return e.Err }

package orders

import (
	"bytes"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// Normalize parses every blob into orders, concatenates them in input order
// and drops repeated order ids, keeping the first occurrence. Any invalid
// blob or record rejects the whole batch.
func Normalize(blobs [][]byte) ([]Order, error) {
	var out []Order
	seen := make(map[string]struct{})
	for i, blob := range blobs {
		if len(bytes.TrimSpace(blob)) == 0 {
			continue
		}
		records, err := parseBlob(blob)
		if err != nil {
			return nil, errors.Wrapf(err, "document %d", i)
		}
		for _, rec := range records {
			o, err := rec.order()
			if err != nil {
				return nil, errors.Wrapf(err, "document %d", i)
			}
			if _, dup := seen[o.ID]; dup {
				continue
			}
			seen[o.ID] = struct{}{}
			out = append(out, o)
		}
	}
	return out, nil
}

// parseBlob accepts an array of order objects, a single order object, or an
// object wrapping the order array in its first array-valued field.
func parseBlob(blob []byte) ([]record, error) {
	if !jx.Valid(blob) {
		return nil, &MalformedInputError{Reason: "invalid JSON"}
	}
	d := jx.DecodeBytes(blob)
	switch d.Next() {
	case jx.Array:
		return decodeRecords(d)
	case jx.Object:
		var (
			hasID   bool
			wrapped jx.Raw
		)
		err := d.Obj(func(d *jx.Decoder, key string) error {
			if key == fieldOrderID {
				hasID = true
			}
			if wrapped == nil && d.Next() == jx.Array {
				raw, err := d.Raw()
				if err != nil {
					return err
				}
				wrapped = raw
				return nil
			}
			return d.Skip()
		})
		if err != nil {
			return nil, &MalformedInputError{Reason: "invalid JSON", Err: err}
		}
		if hasID {
			rec, err := decodeRecord(jx.DecodeBytes(blob))
			if err != nil {
				return nil, &MalformedInputError{Reason: "invalid JSON", Err: err}
			}
			return []record{rec}, nil
		}
		if wrapped == nil {
			return nil, &MalformedInputError{Reason: "object holds no order records"}
		}
		return decodeRecords(jx.DecodeBytes(wrapped))
	default:
		return nil, &MalformedInputError{Reason: "expected an array or object of orders"}
	}
}

func decodeRecords(d *jx.Decoder) ([]record, error) {
	var out []record
	err := d.Arr(func(d *jx.Decoder) error {
		if d.Next() != jx.Object {
			return &MalformedInputError{Reason: "order record is not an object"}
		}
		rec, err := decodeRecord(d)
		if err != nil {
			return err
		}
		out = append(out, rec)
		return nil
	})
	if err != nil {
		var malformed *MalformedInputError
		if errors.As(err, &malformed) {
			return nil, malformed
		}
		return nil, &MalformedInputError{Reason: "invalid JSON", Err: err}
	}
	return out, nil
}

// SplitPayload turns a request body into order documents. A top-level object
// whose values are all strings is a mapping of named documents, each value
// holding a JSON document of its own; they are returned in document order.
// An empty object holds no documents. Anything else is a single document.
func SplitPayload(body []byte) ([][]byte, error) {
	if !jx.Valid(body) {
		return nil, &MalformedInputError{Reason: "invalid JSON"}
	}
	d := jx.DecodeBytes(body)
	if d.Next() != jx.Object {
		return [][]byte{body}, nil
	}

	var (
		docs       [][]byte
		fields     int
		allStrings = true
		hasID      bool
	)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		fields++
		if key == fieldOrderID {
			hasID = true
		}
		if d.Next() != jx.String {
			allStrings = false
			return d.Skip()
		}
		s, err := d.Str()
		if err != nil {
			return err
		}
		docs = append(docs, []byte(s))
		return nil
	})
	if err != nil {
		return nil, &MalformedInputError{Reason: "invalid JSON", Err: err}
	}
	if fields == 0 {
		return nil, nil
	}
	if !allStrings || hasID {
		return [][]byte{body}, nil
	}
	return docs, nil
}

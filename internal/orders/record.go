package orders

import (
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

const (
	fieldOrderID       = "order_id"
	fieldStatus        = "status"
	fieldDeliveredAt   = "delivery_time.$date"
	fieldDeliveredLong = "delivery_time.$date.$numberLong"
	fieldVenueName     = "venue_name"
	fieldTimezone      = "venue_timezone"
	fieldCurrency      = "currency"
	fieldTotalPrice    = "total_price"
	fieldMemberShare   = "group.my_member.price_share"
	fieldItems         = "items"
	fieldGroupItems    = "group.my_member.items"

	fieldItemName   = "name"
	fieldItemCount  = "count"
	fieldItemAmount = "end_amount"
)

// record is one order object flattened into dotted column paths. Nested
// objects are expanded, arrays and scalars are kept as raw JSON.
type record map[string]jx.Raw

func decodeRecord(d *jx.Decoder) (record, error) {
	rec := make(record)
	if err := flatten(d, "", rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func flatten(d *jx.Decoder, prefix string, rec record) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		if d.Next() == jx.Object {
			return flatten(d, path, rec)
		}
		raw, err := d.Raw()
		if err != nil {
			return err
		}
		rec[path] = append(jx.Raw(nil), raw...)
		return nil
	})
}

// lookup treats JSON null the same as an absent field.
func (r record) lookup(path string) (jx.Raw, bool) {
	raw, ok := r[path]
	if !ok || raw.Type() == jx.Null {
		return nil, false
	}
	return raw, true
}

func (r record) str(path string) (string, bool, error) {
	raw, ok := r.lookup(path)
	if !ok {
		return "", false, nil
	}
	if raw.Type() != jx.String {
		return "", true, errors.Errorf("expected string, got %s", raw.Type())
	}
	s, err := jx.DecodeBytes(raw).Str()
	return s, true, err
}

// int accepts JSON integers, integral floats and numeric strings.
func (r record) int(path string) (int64, bool, error) {
	raw, ok := r.lookup(path)
	if !ok {
		return 0, false, nil
	}
	v, err := rawInt(raw)
	return v, true, err
}

func rawInt(raw jx.Raw) (int64, error) {
	switch raw.Type() {
	case jx.Number:
		n, err := jx.DecodeBytes(raw).Num()
		if err != nil {
			return 0, err
		}
		if n.IsInt() {
			return n.Int64()
		}
		f, err := n.Float64()
		if err != nil {
			return 0, err
		}
		if f != float64(int64(f)) {
			return 0, errors.Errorf("expected integer, got %s", raw)
		}
		return int64(f), nil
	case jx.String:
		s, err := jx.DecodeBytes(raw).Str()
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, errors.Wrap(err, "parse numeric string")
		}
		return v, nil
	default:
		return 0, errors.Errorf("expected number, got %s", raw.Type())
	}
}

func (r record) items(path string) ([]LineItem, error) {
	raw, ok := r.lookup(path)
	if !ok {
		return nil, nil
	}
	if raw.Type() != jx.Array {
		return nil, errors.Errorf("expected array, got %s", raw.Type())
	}
	var out []LineItem
	err := jx.DecodeBytes(raw).Arr(func(d *jx.Decoder) error {
		if d.Next() != jx.Object {
			return errors.New("item is not an object")
		}
		item, err := decodeRecord(d)
		if err != nil {
			return err
		}
		li, err := item.lineItem()
		if err != nil {
			return err
		}
		out = append(out, li)
		return nil
	})
	return out, err
}

func (r record) lineItem() (LineItem, error) {
	var li LineItem
	name, _, err := r.str(fieldItemName)
	if err != nil {
		return li, errors.Wrap(err, fieldItemName)
	}
	count, _, err := r.int(fieldItemCount)
	if err != nil {
		return li, errors.Wrap(err, fieldItemCount)
	}
	amount, _, err := r.int(fieldItemAmount)
	if err != nil {
		return li, errors.Wrap(err, fieldItemAmount)
	}
	li.Name, li.Count, li.Amount = name, count, amount
	return li, nil
}

// order validates the record and applies field fallbacks.
func (r record) order() (Order, error) {
	var o Order

	id, ok, err := r.str(fieldOrderID)
	switch {
	case err != nil:
		return o, &MalformedInputError{Field: fieldOrderID, Err: err}
	case !ok || id == "":
		return o, &MalformedInputError{Field: fieldOrderID, Reason: "missing required field"}
	}
	o.ID = id

	fail := func(field string, err error) (Order, error) {
		return Order{}, &MalformedInputError{OrderID: id, Field: field, Err: err}
	}
	missing := func(field string) (Order, error) {
		return Order{}, &MalformedInputError{OrderID: id, Field: field, Reason: "missing required field"}
	}

	if o.Status, ok, err = r.str(fieldStatus); err != nil {
		return fail(fieldStatus, err)
	} else if !ok {
		return missing(fieldStatus)
	}

	if o.DeliveredAtMs, ok, err = r.int(fieldDeliveredAt); err != nil {
		return fail(fieldDeliveredAt, err)
	} else if !ok {
		if o.DeliveredAtMs, ok, err = r.int(fieldDeliveredLong); err != nil {
			return fail(fieldDeliveredLong, err)
		} else if !ok {
			return missing(fieldDeliveredAt)
		}
	}

	if o.VenueName, _, err = r.str(fieldVenueName); err != nil {
		return fail(fieldVenueName, err)
	}
	if o.Timezone, _, err = r.str(fieldTimezone); err != nil {
		return fail(fieldTimezone, err)
	}
	if o.Currency, ok, err = r.str(fieldCurrency); err != nil {
		return fail(fieldCurrency, err)
	} else if !ok || o.Currency == "" {
		o.Currency = UnknownCurrency
	}
	if o.TotalPrice, _, err = r.int(fieldTotalPrice); err != nil {
		return fail(fieldTotalPrice, err)
	}

	share, ok, err := r.int(fieldMemberShare)
	if err != nil {
		return fail(fieldMemberShare, err)
	}
	if ok {
		o.MemberShare = &share
	}

	if o.Items, err = r.items(fieldItems); err != nil {
		return fail(fieldItems, err)
	}
	if o.GroupItems, err = r.items(fieldGroupItems); err != nil {
		return fail(fieldGroupItems, err)
	}
	return o, nil
}

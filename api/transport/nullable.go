package transport

import "encoding/json"

// NullableString tells an absent JSON field apart from an explicit null.
type NullableString struct {
	Set   bool
	Value *string
}

func (n *NullableString) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

// OrEmpty returns nil when the field was absent, and "" for null.
func (n NullableString) OrEmpty() *string {
	if !n.Set {
		return nil
	}
	v := ""
	if n.Value != nil {
		v = *n.Value
	}
	return &v
}

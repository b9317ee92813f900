package models

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/mcncl/jsonemit/internal/errors"
)

// FromNative converts a tree of plain Go values into a Value tree.
// Go maps are unordered, so their keys are taken in sorted order.
func FromNative(v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return NullValue, nil
	case Value:
		return t, nil
	case string:
		return String(t), nil
	case bool:
		return Bool(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, errors.NewConversionError(fmt.Sprintf("invalid number %q", t.String()), err)
		}
		return Number(f), nil
	case float64:
		return Number(t), nil
	case float32:
		return Number(t), nil
	case int:
		return Number(t), nil
	case int8:
		return Number(t), nil
	case int16:
		return Number(t), nil
	case int32:
		return Number(t), nil
	case int64:
		return Number(t), nil
	case uint:
		return Number(t), nil
	case uint8:
		return Number(t), nil
	case uint16:
		return Number(t), nil
	case uint32:
		return Number(t), nil
	case uint64:
		return Number(t), nil
	case []any:
		arr := make(Array, len(t))
		for i, item := range t {
			converted, err := FromNative(item)
			if err != nil {
				return nil, err
			}
			arr[i] = converted
		}
		return arr, nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		obj := make(Object, 0, len(t))
		for _, k := range keys {
			converted, err := FromNative(t[k])
			if err != nil {
				return nil, err
			}
			obj = obj.Set(k, converted)
		}
		return obj, nil
	default:
		return nil, errors.NewConversionError(fmt.Sprintf("cannot convert value of type %T", v), errors.ErrUnsupportedType)
	}
}

// ToNative converts a Value tree into the shapes encoding/json decodes into:
// map[string]any, []any, float64, string, bool and nil. Later duplicate keys win,
// as they do when decoding.
func ToNative(v Value) any {
	switch t := v.(type) {
	case String:
		return string(t)
	case Number:
		return float64(t)
	case Bool:
		return bool(t)
	case Array:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = ToNative(item)
		}
		return out
	case Object:
		out := make(map[string]any, len(t))
		for _, m := range t {
			out[m.Key] = ToNative(m.Value)
		}
		return out
	default:
		return nil
	}
}

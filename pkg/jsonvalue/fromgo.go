package jsonvalue

import (
	"fmt"
	"sort"
)

// FromGo converts a Go value produced by encoding/json.Unmarshal (into
// an interface{}) into a Value tree under zone. Accepts nil, bool,
// float64, string, []interface{}, and map[string]interface{} — the
// exact set encoding/json produces for untyped JSON, giving callers a
// bridge from text input into the engine's own value model. Object keys
// are inserted in ascending key order, since a decoded Go map carries
// no key order of its own.
func FromGo(zone *Zone, in interface{}) (*Value, error) {
	switch t := in.(type) {
	case nil:
		return zone.NewNull(), nil
	case bool:
		return zone.NewBool(t), nil
	case float64:
		return zone.NewNumber(t), nil
	case string:
		return zone.NewString(t), nil
	case []interface{}:
		v := zone.NewList()
		for _, elem := range t {
			ev, err := FromGo(zone, elem)
			if err != nil {
				return nil, err
			}
			if err := v.PushBack(ev); err != nil {
				return nil, err
			}
		}
		return v, nil
	case map[string]interface{}:
		v := zone.NewObject()
		keys := make([]string, 0, len(t))
		for key := range t {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			vv, err := FromGo(zone, t[key])
			if err != nil {
				return nil, err
			}
			if err := v.Set(key, vv); err != nil {
				return nil, err
			}
		}
		return v, nil
	default:
		return nil, fmt.Errorf("jsonvalue: unsupported Go type %T", in)
	}
}

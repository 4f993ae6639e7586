package jsoncompat

import "fmt"

// UnmarshalObject decodes data and requires the top level value to be a JSON object.
func UnmarshalObject(data []byte) (map[string]any, error) {
	var v any
	if err := Unmarshal(data, &v); err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected a JSON object, got %T", v)
	}
	return obj, nil
}

// Package wire converts the JSON-tagged request and response types to and
// from google.protobuf.Struct, the message type shared by the protobuf HTTP
// encoding and the gRPC service.
package wire

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

// ToStruct encodes v through its JSON form, so field names and null handling
// match the JSON API exactly.
func ToStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("wire: marshal %T: %w", v, err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("wire: %T is not a JSON object: %w", v, err)
	}
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, fmt.Errorf("wire: %w", err)
	}
	return s, nil
}

// FromStruct decodes s into the JSON-tagged value pointed to by v.
func FromStruct(s *structpb.Struct, v any) error {
	b, err := json.Marshal(s.AsMap())
	if err != nil {
		return fmt.Errorf("wire: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("wire: decode %T: %w", v, err)
	}
	return nil
}

// String returns the string field name of s, or "" when it is absent or not
// a string. Numbers are formatted without a fractional part when integral,
// so {"window": 90} and {"window": "90"} read the same.
func String(s *structpb.Struct, name string) string {
	v, ok := s.GetFields()[name]
	if !ok {
		return ""
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return k.StringValue
	case *structpb.Value_NumberValue:
		if k.NumberValue == float64(int64(k.NumberValue)) {
			return fmt.Sprintf("%d", int64(k.NumberValue))
		}
		return fmt.Sprintf("%g", k.NumberValue)
	default:
		return ""
	}
}

package httpapi

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/trackar/server/internal/trackar/types"
)

// toStruct converts a JSON-tagged response value into a Struct with the same
// field names the JSON encoding uses.
func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("response is not an object: %w", err)
	}
	return structpb.NewStruct(m)
}

func accessRequestFromStruct(s *structpb.Struct) types.AccessRequest {
	f := s.GetFields()
	return types.AccessRequest{
		PersonID:   stringField(f["person_id"]),
		PersonName: stringField(f["person_name"]),
		Action:     f["action"].GetStringValue(),
		Location:   f["location"].GetStringValue(),
		OccurredAt: f["occurred_at"].GetStringValue(),
	}
}

// stringField accepts numeric ids as well as strings.
func stringField(v *structpb.Value) string {
	switch k := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return k.StringValue
	case *structpb.Value_NumberValue:
		return fmt.Sprintf("%.0f", k.NumberValue)
	default:
		return ""
	}
}

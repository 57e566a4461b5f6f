package serializer

import (
	"fmt"
)

// NewRawSerializer creates a serializer that passes byte slices and strings
// through unchanged. It avoids any encoding overhead for clients that store
// raw payloads, at the cost of supporting only those two types.
func NewRawSerializer() IValueSerializer {
	return &rawSerializerImpl{}
}

// rawSerializerImpl implements the IValueSerializer interface without encoding
type rawSerializerImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IValueSerializer)
// --------------------------------------------------------------------------

func (r rawSerializerImpl) Marshal(v any) ([]byte, error) {
	switch val := v.(type) {
	case []byte:
		return val, nil
	case string:
		return []byte(val), nil
	default:
		return nil, fmt.Errorf("raw serializer supports only []byte and string, got %T", v)
	}
}

func (r rawSerializerImpl) Unmarshal(b []byte, v any) error {
	switch target := v.(type) {
	case *[]byte:
		*target = b
		return nil
	case *string:
		*target = string(b)
		return nil
	default:
		return fmt.Errorf("raw serializer supports only *[]byte and *string, got %T", v)
	}
}

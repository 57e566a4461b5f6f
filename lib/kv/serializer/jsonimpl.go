package serializer

import (
	"encoding/json"
)

// NewJSONSerializer creates a new serializer using json encoding
func NewJSONSerializer() IValueSerializer {
	return &jsonSerializerImpl{}
}

// jsonSerializerImpl implements the IValueSerializer interface using json encoding
type jsonSerializerImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IValueSerializer)
// --------------------------------------------------------------------------

func (j jsonSerializerImpl) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (j jsonSerializerImpl) Unmarshal(b []byte, v any) error {
	return json.Unmarshal(b, v)
}

package serializer

// IValueSerializer is the interface for all value serializers used by the
// typed clients to convert between Go values and the byte payloads the
// engine stores.
type IValueSerializer interface {
	// Marshal serializes a value into a byte array.
	// It returns the serialized byte array and an error if any
	Marshal(v any) ([]byte, error)
	// Unmarshal deserializes a byte array into the value pointed to by v.
	// It returns an error if any
	Unmarshal(b []byte, v any) error
}

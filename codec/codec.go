package codec

// Codec encodes/decodes values V to []byte for byte-backed stores.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}

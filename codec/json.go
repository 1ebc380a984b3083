package codec

import "github.com/goccy/go-json"

// JSON is a Codec backed by goccy/go-json (drop-in encoding/json
// replacement). The zero value is ready to use.
type JSON[V any] struct{}

func (JSON[V]) Encode(v V) ([]byte, error) { return json.Marshal(v) }
func (JSON[V]) Decode(b []byte) (V, error) {
	var v V
	err := json.Unmarshal(b, &v)
	return v, err
}

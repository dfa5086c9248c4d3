package codec

import gojson "github.com/goccy/go-json"

// GoJSON encodes with github.com/goccy/go-json. It is the Default codec for
// JSONL lines and manifests. HTML characters are not escaped, so URIs in
// manifests stay readable.
type GoJSON struct{}

// Marshal encodes v.
func (GoJSON) Marshal(v any) ([]byte, error) {
	return gojson.MarshalWithOption(v, gojson.DisableHTMLEscape())
}

// Unmarshal decodes data into v.
func (GoJSON) Unmarshal(data []byte, v any) error { return gojson.Unmarshal(data, v) }

// Name returns "go-json".
func (GoJSON) Name() string { return "go-json" }

// Append implements Appender.
func (g GoJSON) Append(dst []byte, v any) ([]byte, error) {
	b, err := g.Marshal(v)
	if err != nil {
		return dst, err
	}
	return append(dst, b...), nil
}

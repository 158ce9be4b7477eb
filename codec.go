package jsonsettings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Codec converts between a payload and its text representation.
type Codec interface {
	// Marshal serializes v.
	Marshal(v any) ([]byte, error)

	// Unmarshal populates v (a pointer) from data. Fields absent from data keep their values.
	Unmarshal(data []byte, v any) error

	// Name returns the format name ("json", "yaml", "toml").
	Name() string
}

// Built-in codecs.
var (
	JSON Codec = jsonCodec{indent: "  "}
	YAML Codec = yamlCodec{}
	TOML Codec = tomlCodec{}
)

// CodecFor returns the codec registered under a format name.
// Accepted names: "json", "yaml", "yml", "toml".
func CodecFor(format string) (Codec, error) {
	switch strings.ToLower(format) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "toml":
		return TOML, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: json, yaml, toml)", format)
	}
}

// inferCodec picks a codec from the file extension, defaulting to JSON.
func inferCodec(path string) Codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	case ".toml":
		return TOML
	default:
		return JSON
	}
}

type jsonCodec struct {
	indent string
}

func (c jsonCodec) Marshal(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", c.indent)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func (c jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (c jsonCodec) Name() string { return "json" }

type yamlCodec struct{}

func (yamlCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (yamlCodec) Unmarshal(data []byte, v any) error {
	return yaml.Unmarshal(data, v)
}

func (yamlCodec) Name() string { return "yaml" }

// tomlCodec routes *Object through plain maps since TOML tables have no
// custom marshaling hook. Bag key order is not kept in TOML files.
type tomlCodec struct{}

func (tomlCodec) Marshal(v any) ([]byte, error) {
	if o, ok := v.(*Object); ok {
		return toml.Marshal(tomlData(o))
	}
	return toml.Marshal(v)
}

func (tomlCodec) Unmarshal(data []byte, v any) error {
	o, ok := v.(*Object)
	if !ok {
		return toml.Unmarshal(data, v)
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := objectFromMap(raw)
	if err != nil {
		return err
	}
	*o = *parsed
	return nil
}

func (tomlCodec) Name() string { return "toml" }

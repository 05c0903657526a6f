// Package document implements reading and writing of the flat JSON documents
// that transjson translates.
//
// A document is a single top-level JSON object:
//
//	{
//	    "greeting": "hello",
//	    "count": 3,
//	    "active": true
//	}
//
// Keys keep their file order end to end. Values are held as raw JSON so that
// anything that is not translated (numbers, booleans, null, nested objects and
// arrays) is written back exactly as it was read.
package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"go.uber.org/zap"
)

// Document is an ordered JSON object.
type Document struct {
	// keys preserves the key order from the file.
	keys   []string
	values map[string]json.RawMessage
}

// New returns an empty document.
func New() *Document {
	return &Document{values: make(map[string]json.RawMessage)}
}

// Keys returns the keys in file order.
func (d *Document) Keys() []string {
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

// Len returns the number of keys.
func (d *Document) Len() int {
	return len(d.keys)
}

// Get returns the raw JSON value stored under key.
func (d *Document) Get(key string) (json.RawMessage, bool) {
	v, ok := d.values[key]
	return v, ok
}

// String returns the value under key if it is a JSON string.
func (d *Document) String(key string) (string, bool) {
	raw, ok := d.values[key]
	if !ok || !isString(raw) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// StringKeys returns the keys whose values are JSON strings, in order.
func (d *Document) StringKeys() []string {
	var out []string
	for _, k := range d.keys {
		if isString(d.values[k]) {
			out = append(out, k)
		}
	}
	return out
}

// Set stores a raw JSON value. New keys are appended; existing keys keep
// their position.
func (d *Document) Set(key string, raw json.RawMessage) {
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	v := make(json.RawMessage, len(raw))
	copy(v, raw)
	d.values[key] = v
}

// SetString stores s as a JSON string value.
func (d *Document) SetString(key, s string) {
	d.Set(key, json.RawMessage(quote(s)))
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	c := New()
	for _, k := range d.keys {
		c.Set(k, d.values[k])
	}
	return c
}

// Equal reports whether both documents have the same keys in the same order
// and byte-identical values.
func (d *Document) Equal(o *Document) bool {
	if d.Len() != o.Len() {
		return false
	}
	for i, k := range d.keys {
		if o.keys[i] != k || !bytes.Equal(d.values[k], o.values[k]) {
			return false
		}
	}
	return true
}

func isString(raw json.RawMessage) bool {
	return len(raw) > 0 && raw[0] == '"'
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// Parse parses a JSON object, preserving key order.
func Parse(data []byte) (*Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	t, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	if delim, ok := t.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("parsing JSON: expected top-level object, got %v", t)
	}

	d := New()
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parsing JSON: %w", err)
		}
		key, ok := kt.(string)
		if !ok {
			return nil, fmt.Errorf("parsing JSON: expected string key, got %T", kt)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("parsing JSON: value for key %q: %w", key, err)
		}
		d.Set(key, canonical(raw))
	}

	// Closing brace.
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("parsing JSON: unexpected data after top-level object")
	}

	return d, nil
}

// canonical compacts container values and re-quotes strings so that escaped
// non-ASCII characters are stored literally. Numbers, booleans and null are
// kept byte for byte.
func canonical(raw json.RawMessage) json.RawMessage {
	if isString(raw) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return raw
		}
		return json.RawMessage(quote(s))
	}
	if len(raw) == 0 || (raw[0] != '{' && raw[0] != '[') {
		return raw
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return raw
	}
	out, err := requoteStrings(buf.Bytes())
	if err != nil {
		return buf.Bytes()
	}
	return out
}

// requoteStrings re-encodes every string literal (keys included) of compact
// JSON through quote. Everything between literals is copied unchanged.
func requoteStrings(compact []byte) ([]byte, error) {
	out := make([]byte, 0, len(compact))
	for i := 0; i < len(compact); {
		if compact[i] != '"' {
			out = append(out, compact[i])
			i++
			continue
		}

		end := i + 1
		for end < len(compact) && compact[end] != '"' {
			if compact[end] == '\\' {
				end++
			}
			end++
		}
		if end >= len(compact) {
			return nil, fmt.Errorf("unterminated string")
		}

		var s string
		if err := json.Unmarshal(compact[i:end+1], &s); err != nil {
			return nil, err
		}
		out = append(out, quote(s)...)
		i = end + 1
	}
	return out, nil
}

// Load reads and parses the document at path. Every failure is a *LoadError.
func Load(path string, log *zap.Logger) (*Document, error) {
	if log == nil {
		log = zap.NewNop()
	}

	data, err := os.ReadFile(path)
	if err == nil {
		var d *Document
		d, err = Parse(data)
		if err == nil {
			log.Sugar().Infof("Successfully loaded JSON file: %s", path)
			return d, nil
		}
	}

	log.Sugar().Errorf("Error loading JSON file: %s - %v", path, err)
	return nil, &LoadError{Path: path, Err: err}
}

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

const indent = "    "

// Marshal produces the document with 4-space indentation, preserving key
// order and writing non-ASCII characters literally.
func Marshal(d *Document) ([]byte, error) {
	if d.Len() == 0 {
		return []byte("{}\n"), nil
	}

	var b bytes.Buffer
	b.WriteString("{\n")
	for i, k := range d.keys {
		b.WriteString(indent)
		b.WriteString(quote(k))
		b.WriteString(": ")
		if err := writeValue(&b, d.values[k]); err != nil {
			return nil, fmt.Errorf("encoding value for key %q: %w", k, err)
		}
		if i < len(d.keys)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString("}\n")

	return b.Bytes(), nil
}

func writeValue(b *bytes.Buffer, raw json.RawMessage) error {
	if len(raw) == 0 || (raw[0] != '{' && raw[0] != '[') {
		b.Write(raw)
		return nil
	}
	// Nested containers are re-indented one level deeper than the key.
	return json.Indent(b, raw, indent, indent)
}

// Save writes the document to path. The parent directory must exist.
// Every failure is a *SaveError.
func Save(d *Document, path string, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}

	data, err := Marshal(d)
	if err == nil {
		err = os.WriteFile(path, data, 0644)
	}
	if err != nil {
		log.Sugar().Errorf("Error saving JSON file: %s - %v", path, err)
		return &SaveError{Path: path, Err: err}
	}

	log.Sugar().Infof("Successfully saved translated JSON file: %s", path)
	return nil
}

// quote returns s as a JSON string literal. Unlike json.Marshal it leaves
// '<', '>' and '&' alone and keeps non-ASCII characters as they are.
func quote(s string) string {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return strconv.Quote(s)
	}
	return string(bytes.TrimRight(b.Bytes(), "\n"))
}

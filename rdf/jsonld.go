package rdf

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// DecodeJSONLD reads a complete JSON-LD document from r into generic JSON
// values (map[string]interface{}, []interface{}, string, float64, bool, nil).
// The name is only used in error messages.
//
// Syntax errors are reported as *ParseError with line and column. A
// document whose top level is neither an object nor an array wraps
// ErrInvalidDocument.
func DecodeJSONLD(r io.Reader, name string) (interface{}, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return decodeJSONLDBytes(data, name)
}

func decodeJSONLDBytes(data []byte, name string) (interface{}, error) {
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return nil, newParseErrorAtOffset("jsonld", name, data, max(int(syntaxErr.Offset)-1, 0), err)
		}
		return nil, &ParseError{Format: "jsonld", Path: name, Offset: -1, Err: err}
	}
	switch doc.(type) {
	case map[string]interface{}, []interface{}:
		return doc, nil
	case nil:
		return nil, fmt.Errorf("%w: %s: document is null", ErrInvalidDocument, name)
	default:
		return nil, fmt.Errorf("%w: %s: top-level value is %T, want object or array", ErrInvalidDocument, name, doc)
	}
}

// EncodeJSONLD writes doc as indented JSON followed by a newline. Object
// keys are sorted, so equal documents always encode to identical bytes.
func EncodeJSONLD(w io.Writer, doc interface{}) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// RoundTripJSONLD serializes doc to JSON-LD text and parses that text back
// into generic JSON values, dropping any processor-specific Go types.
func RoundTripJSONLD(doc interface{}) (interface{}, error) {
	var buf bytes.Buffer
	if err := EncodeJSONLD(&buf, doc); err != nil {
		return nil, err
	}
	return decodeJSONLDBytes(buf.Bytes(), "serialized graph")
}

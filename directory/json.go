package directory

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
)

// ErrMalformedDump reports a JSON dump that failed to decode.
var ErrMalformedDump = errors.New("malformed JSON dump")

// jsonRecords walks a top-level array of {"attributes": {...}} elements
// with a token decoder so each record keeps the attribute order of the
// dump. Only the nested attributes object is kept. Strings become
// scalars, arrays multi-values (nested arrays flattened), numbers and
// booleans their literal text, and objects binary payloads carrying
// their "encoded" base64 text.
func jsonRecords(r io.Reader, opts ParseOptions) iter.Seq2[*Record, error] {
	return func(yield func(*Record, error) bool) {
		dec := json.NewDecoder(r)
		dec.UseNumber()

		if err := expectDelim(dec, json.Delim('[')); err != nil {
			yield(nil, err)
			return
		}
		for dec.More() {
			rec, err := decodeElement(dec)
			if err != nil {
				yield(nil, err)
				return
			}
			if rec == nil {
				continue
			}
			Fixup(rec, opts)
			if !yield(rec, nil) {
				return
			}
		}
		if _, err := dec.Token(); err != nil {
			yield(nil, wrapJSON(err))
		}
	}
}

func wrapJSON(err error) error {
	return fmt.Errorf("%w: %v", ErrMalformedDump, err)
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return wrapJSON(err)
	}
	d, ok := tok.(json.Delim)
	if !ok || d != want {
		return fmt.Errorf("%w: expected %v, found %v", ErrMalformedDump, want, tok)
	}
	return nil
}

// decodeElement reads one array element, keeping only its nested
// attributes object. Elements without one yield a nil record.
func decodeElement(dec *json.Decoder) (*Record, error) {
	if err := expectDelim(dec, json.Delim('{')); err != nil {
		return nil, err
	}
	var rec *Record
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, wrapJSON(err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: expected object key, found %v", ErrMalformedDump, tok)
		}
		if key != "attributes" {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, wrapJSON(err)
			}
			continue
		}
		rec, err = decodeAttributes(dec)
		if err != nil {
			return nil, err
		}
	}
	if err := expectDelim(dec, json.Delim('}')); err != nil {
		return nil, err
	}
	return rec, nil
}

func decodeAttributes(dec *json.Decoder) (*Record, error) {
	if err := expectDelim(dec, json.Delim('{')); err != nil {
		return nil, err
	}
	rec := NewRecord()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, wrapJSON(err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: expected attribute name, found %v", ErrMalformedDump, tok)
		}
		v, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		rec.Set(key, v)
	}
	if err := expectDelim(dec, json.Delim('}')); err != nil {
		return nil, err
	}
	return rec, nil
}

func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, wrapJSON(err)
	}
	if d, ok := tok.(json.Delim); ok {
		switch d {
		case '[':
			var elems []string
			if err := decodeArray(dec, &elems); err != nil {
				return Value{}, err
			}
			return Multi(elems...), nil
		case '{':
			return decodeBinary(dec)
		}
		return Value{}, fmt.Errorf("%w: unexpected %v", ErrMalformedDump, d)
	}
	return Scalar(literalText(tok)), nil
}

// decodeArray flattens array elements, descending into nested arrays.
// The opening '[' has already been consumed.
func decodeArray(dec *json.Decoder, elems *[]string) error {
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return wrapJSON(err)
		}
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '[':
				if err := decodeArray(dec, elems); err != nil {
					return err
				}
			case '{':
				v, err := decodeBinary(dec)
				if err != nil {
					return err
				}
				*elems = append(*elems, v.Base64())
			default:
				return fmt.Errorf("%w: unexpected %v", ErrMalformedDump, d)
			}
			continue
		}
		*elems = append(*elems, literalText(tok))
	}
	if _, err := dec.Token(); err != nil { // closing ']'
		return wrapJSON(err)
	}
	return nil
}

// decodeBinary consumes an object value. Dumps carry binary payloads as
// {"encoded": "<base64>", "encoding": "base64"}; anything else becomes
// an empty payload. The opening '{' has already been consumed.
func decodeBinary(dec *json.Decoder) (Value, error) {
	encoded := ""
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Value{}, wrapJSON(err)
		}
		key, ok := tok.(string)
		if !ok {
			return Value{}, fmt.Errorf("%w: expected object key, found %v", ErrMalformedDump, tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return Value{}, wrapJSON(err)
		}
		if key == "encoded" {
			var s string
			if err := json.Unmarshal(raw, &s); err == nil {
				encoded = s
			}
		}
	}
	if _, err := dec.Token(); err != nil { // closing '}'
		return Value{}, wrapJSON(err)
	}
	return Binary(encoded), nil
}

func literalText(tok json.Token) string {
	switch t := tok.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	case nil:
		return ""
	}
	return fmt.Sprint(tok)
}

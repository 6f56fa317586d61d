package adclient

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"

	"adsift/directory"
)

// DumpWriter streams records into the JSON dump format the analyzer
// reads: a top-level array of {dn, attributes} objects with attributes
// in directory order and binary payloads as {"encoded", "encoding":
// "base64"} objects.
type DumpWriter struct {
	w     *bufio.Writer
	count int
}

func NewDumpWriter(w io.Writer) *DumpWriter {
	return &DumpWriter{w: bufio.NewWriter(w)}
}

// Write appends one record to the dump and flushes it, so records
// already written survive a later page failure.
func (d *DumpWriter) Write(rec *directory.Record) error {
	sep := ",\n"
	if d.count == 0 {
		sep = "[\n"
	}
	if _, err := d.w.WriteString(sep); err != nil {
		return err
	}
	d.count++
	if err := writeRecord(d.w, rec); err != nil {
		return err
	}
	return d.w.Flush()
}

// Close terminates the array. An empty dump renders as [].
func (d *DumpWriter) Close() error {
	end := "\n]\n"
	if d.count == 0 {
		end = "[]\n"
	}
	if _, err := d.w.WriteString(end); err != nil {
		return err
	}
	return d.w.Flush()
}

func writeRecord(w io.Writer, rec *directory.Record) error {
	var b bytes.Buffer
	b.WriteString("  {\n    \"dn\": ")
	writeJSONString(&b, rec.DN())
	b.WriteString(",\n    \"attributes\": {")
	for i, key := range rec.Keys() {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString("\n      ")
		writeJSONString(&b, rec.DisplayKey(key))
		b.WriteString(": ")
		v, _ := rec.Get(key)
		writeValue(&b, v)
	}
	b.WriteString("\n    }\n  }")
	_, err := w.Write(b.Bytes())
	return err
}

func writeValue(b *bytes.Buffer, v directory.Value) {
	switch v.Kind() {
	case directory.KindBinary:
		b.WriteString(`{"encoded": `)
		writeJSONString(b, v.Base64())
		b.WriteString(`, "encoding": "base64"}`)
	case directory.KindMulti:
		b.WriteByte('[')
		for i, e := range v.Strings() {
			if i > 0 {
				b.WriteString(", ")
			}
			writeJSONString(b, e)
		}
		b.WriteByte(']')
	default:
		writeJSONString(b, v.String())
	}
}

func writeJSONString(b *bytes.Buffer, s string) {
	enc, _ := json.Marshal(s)
	b.Write(enc)
}

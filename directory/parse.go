package directory

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"
)

// Parse reads one dump in either encoding, materializing every record.
// The encoding is detected from the first non-space byte: a JSON dump
// starts with '['.
func Parse(r io.Reader, opts ParseOptions) (*RecordSet, error) {
	br := bufio.NewReader(r)
	isJSON, err := sniffJSON(br)
	if err != nil {
		if err == io.EOF {
			return NewRecordSet(), nil
		}
		return nil, err
	}

	seq := blockRecords(br, opts)
	if isJSON {
		seq = jsonRecords(br, opts)
	}
	set := NewRecordSet()
	for rec, err := range seq {
		if err != nil {
			return nil, err
		}
		set.Append(rec)
	}
	return set, nil
}

// ParseLazy reads one dump record by record without materializing it.
// The returned stream is single-pass.
func ParseLazy(r io.Reader, opts ParseOptions) *Stream {
	br := bufio.NewReader(r)
	return NewStream(lazyRecords(br, opts))
}

// ParseFiles reads and concatenates several dump files into one set.
func ParseFiles(paths []string, opts ParseOptions) (*RecordSet, error) {
	set := NewRecordSet()
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		s, err := Parse(f, opts)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		for _, r := range s.All() {
			set.Append(r)
		}
	}
	return set, nil
}

// ParseFilesLazy reads dump files record by record in order. The stream
// is single-pass; a malformed JSON record aborts it with a hint to retry
// under eager parsing.
func ParseFilesLazy(paths []string, opts ParseOptions) *Stream {
	return NewStream(func(yield func(*Record, error) bool) {
		for _, path := range paths {
			if !lazyFile(path, opts, yield) {
				return
			}
		}
	})
}

func lazyFile(path string, opts ParseOptions, yield func(*Record, error) bool) bool {
	f, err := os.Open(path)
	if err != nil {
		yield(nil, err)
		return false
	}
	defer f.Close()

	for rec, err := range lazyRecords(bufio.NewReader(f), opts) {
		if err != nil {
			yield(nil, fmt.Errorf("%s: %w", path, err))
			return false
		}
		if !yield(rec, nil) {
			return false
		}
	}
	return true
}

// lazyRecords sniffs the encoding and yields records one at a time,
// tagging malformed JSON with the eager-parse hint.
func lazyRecords(br *bufio.Reader, opts ParseOptions) iter.Seq2[*Record, error] {
	return func(yield func(*Record, error) bool) {
		isJSON, err := sniffJSON(br)
		if err != nil {
			if err != io.EOF {
				yield(nil, err)
			}
			return
		}

		seq := blockRecords(br, opts)
		if isJSON {
			seq = jsonRecords(br, opts)
		}

		for rec, err := range seq {
			if err != nil {
				if errors.Is(err, ErrMalformedDump) {
					err = fmt.Errorf("%w (retry with eager parsing)", err)
				}
				yield(nil, err)
				return
			}
			if !yield(rec, nil) {
				return
			}
		}
	}
}

// sniffJSON peeks past leading whitespace for the '[' that opens a JSON
// dump. Returns io.EOF for empty input.
func sniffJSON(br *bufio.Reader) (bool, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return false, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		if err := br.UnreadByte(); err != nil {
			return false, err
		}
		return b == '[', nil
	}
}

// blockRecords parses the blank-line separated "key: value" block
// encoding. A line carrying ':' with its key at column 0 starts a field;
// any other non-blank line continues the previous field's value with its
// leading whitespace removed. Brace enumerations decompose into
// multi-values once the record is complete.
func blockRecords(r io.Reader, opts ParseOptions) iter.Seq2[*Record, error] {
	return func(yield func(*Record, error) bool) {
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

		var rec *Record
		cur := ""

		emit := func() bool {
			if rec == nil {
				return true
			}
			out := rec
			rec, cur = nil, ""
			if err := finishBlock(out, opts); err != nil {
				yield(nil, err)
				return false
			}
			return yield(out, nil)
		}

		for sc.Scan() {
			line := strings.TrimSuffix(sc.Text(), "\r")
			if strings.TrimSpace(line) == "" {
				if !emit() {
					return
				}
				continue
			}

			key, rest, isField := cutField(line)
			switch {
			case isField:
				if rec == nil {
					rec = NewRecord()
				}
				cur = key
				rec.Set(key, Scalar(strings.TrimSpace(rest)))
			case rec != nil && cur != "":
				v, _ := rec.Get(cur)
				rec.Set(rec.DisplayKey(cur), Scalar(v.String()+strings.TrimLeft(line, " \t")))
			}
		}
		if err := sc.Err(); err != nil {
			yield(nil, err)
			return
		}
		emit()
	}
}

// cutField splits a field line into key and value. A line is a field
// line when its key starts at column 0 and a ':' follows.
func cutField(line string) (key, value string, ok bool) {
	if line == "" || line[0] == ' ' || line[0] == '\t' {
		return "", "", false
	}
	before, after, found := strings.Cut(line, ":")
	if !found {
		return "", "", false
	}
	return strings.TrimSpace(before), after, true
}

// finishBlock parses brace enumerations and applies the shared fixups.
func finishBlock(rec *Record, opts ParseOptions) error {
	for _, k := range rec.Keys() {
		v, _ := rec.Get(k)
		s := v.String()
		if !IsEnum(s) {
			continue
		}
		elems, err := ParseEnum(s, opts.Complete)
		if err != nil {
			return fmt.Errorf("field %s: %w", rec.DisplayKey(k), err)
		}
		rec.Set(rec.DisplayKey(k), Multi(elems...))
	}
	Fixup(rec, opts)
	return nil
}

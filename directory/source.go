package directory

import (
	"errors"
	"iter"
)

// ErrSourceConsumed reports a second iteration of a single-pass source.
var ErrSourceConsumed = errors.New("record stream already consumed")

// Source is a sequence of records from one or more dumps. A restartable
// source may be iterated any number of times; a single-pass source yields
// ErrSourceConsumed on reuse. Operations needing random or repeated
// access (tree building, sorting, counting) require a restartable source.
type Source interface {
	Records() iter.Seq2[*Record, error]
	Restartable() bool
}

// RecordSet is a fully materialized, restartable Source.
type RecordSet struct {
	records []*Record
}

func NewRecordSet(records ...*Record) *RecordSet {
	return &RecordSet{records: records}
}

func (s *RecordSet) Append(r *Record) {
	s.records = append(s.records, r)
}

func (s *RecordSet) Len() int { return len(s.records) }

// All returns the records in dump order.
func (s *RecordSet) All() []*Record { return s.records }

func (s *RecordSet) Records() iter.Seq2[*Record, error] {
	return func(yield func(*Record, error) bool) {
		for _, r := range s.records {
			if !yield(r, nil) {
				return
			}
		}
	}
}

func (s *RecordSet) Restartable() bool { return true }

// FindByDN returns the first record whose distinguished name matches dn,
// or nil. The scan is linear over the whole set.
func (s *RecordSet) FindByDN(dn string) *Record {
	want := NormalizeDN(dn)
	for _, r := range s.records {
		if NormalizeDN(r.DN()) == want {
			return r
		}
	}
	return nil
}

// Stream is a single-pass Source over a lazily parsed dump.
type Stream struct {
	seq      iter.Seq2[*Record, error]
	consumed bool
}

func NewStream(seq iter.Seq2[*Record, error]) *Stream {
	return &Stream{seq: seq}
}

func (s *Stream) Records() iter.Seq2[*Record, error] {
	return func(yield func(*Record, error) bool) {
		if s.consumed {
			yield(nil, ErrSourceConsumed)
			return
		}
		s.consumed = true
		s.seq(yield)
	}
}

func (s *Stream) Restartable() bool { return false }

// Collect drains src into a materialized RecordSet.
func Collect(src Source) (*RecordSet, error) {
	set := &RecordSet{}
	for r, err := range src.Records() {
		if err != nil {
			return nil, err
		}
		set.records = append(set.records, r)
	}
	return set, nil
}

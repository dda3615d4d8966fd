package calendar

import (
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
	"time"

	"github.com/hashicorp/go-memdb"
	. "github.com/stevegt/goadapt"

	"github.com/aidenh/vega/event"
)

// TimeFieldIndex indexes a time.Time struct field. go-memdb ships
// indexers for strings, bools, and fixed-width integers but not
// time.Time, so it's encoded as a sign-biased big-endian uint64 of
// UnixNano, which sorts in the same order as the underlying instants.
type TimeFieldIndex struct {
	Field string
}

func (i *TimeFieldIndex) FromObject(obj interface{}) (bool, []byte, error) {
	v := reflect.Indirect(reflect.ValueOf(obj))
	fv := v.FieldByName(i.Field)
	if !fv.IsValid() {
		return false, nil, fmt.Errorf("field '%s' for %#v is invalid", i.Field, obj)
	}
	buf, err := encodeTime(fv)
	if err != nil {
		return false, nil, err
	}
	return true, buf, nil
}

func (i *TimeFieldIndex) FromArgs(args ...interface{}) ([]byte, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("must provide only a single argument")
	}
	return encodeTime(reflect.ValueOf(args[0]))
}

func encodeTime(v reflect.Value) ([]byte, error) {
	timeType := reflect.TypeOf(time.Time{})
	if v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, fmt.Errorf("time.Time pointer is nil")
		}
		v = v.Elem()
	}
	if v.Type() != timeType {
		return nil, fmt.Errorf("field is not a time.Time")
	}
	nano := v.Interface().(time.Time).UnixNano()
	// flip the sign bit so two's-complement ordering matches byte ordering
	scaled := uint64(nano ^ int64(-1<<63))
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, scaled)
	return buf, nil
}

// FloatFieldIndex indexes a float64 struct field, for the same reason
// TimeFieldIndex exists: go-memdb has no built-in float indexer.
type FloatFieldIndex struct {
	Field string
}

func (f *FloatFieldIndex) FromObject(obj interface{}) (bool, []byte, error) {
	v := reflect.Indirect(reflect.ValueOf(obj))
	fv := v.FieldByName(f.Field)
	if !fv.IsValid() {
		return false, nil, fmt.Errorf("field '%s' for %#v is invalid", f.Field, obj)
	}
	buf, err := encodeFloat(fv)
	if err != nil {
		return false, nil, err
	}
	return true, buf, nil
}

func (f *FloatFieldIndex) FromArgs(args ...interface{}) ([]byte, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("must provide only a single argument")
	}
	return encodeFloat(reflect.ValueOf(args[0]))
}

func encodeFloat(v reflect.Value) ([]byte, error) {
	if v.Kind() != reflect.Float64 {
		return nil, fmt.Errorf("arg is of type %v; want float64", v.Kind())
	}
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, math.Float64bits(v.Float()))
	return buf, nil
}

// datedTodoRecord is a todo with a deadline but no placement window.
// Seq breaks ties between equal deadlines by insertion order, giving a
// stable sort over dated todos.
type datedTodoRecord struct {
	Seq      uint64
	Deadline time.Time
	Priority float64
	Event    *event.Event
}

// undatedTodoRecord is a todo with neither a deadline nor a window.
type undatedTodoRecord struct {
	Seq      uint64
	Priority float64
	Event    *event.Event
}

// todoStore holds Calendar's two side lists in an in-memory indexed
// database rather than a hand-rolled sorted slice, so "deadline-sorted,
// stable" iteration comes from a real index instead of a bespoke
// binary-insert helper.
type todoStore struct {
	db      *memdb.MemDB
	nextSeq uint64
}

func newTodoStore() (store *todoStore, err error) {
	defer Return(&err)

	schema := &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			"dated_todo": {
				Name: "dated_todo",
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:    "id",
						Unique:  true,
						Indexer: &memdb.UintFieldIndex{Field: "Seq"},
					},
					"deadline_seq": {
						Name:   "deadline_seq",
						Unique: true,
						Indexer: &memdb.CompoundIndex{
							Indexes: []memdb.Indexer{
								&TimeFieldIndex{Field: "Deadline"},
								&memdb.UintFieldIndex{Field: "Seq"},
							},
						},
					},
					"priority": {
						Name:    "priority",
						Unique:  false,
						Indexer: &FloatFieldIndex{Field: "Priority"},
					},
				},
			},
			"todo": {
				Name: "todo",
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:    "id",
						Unique:  true,
						Indexer: &memdb.UintFieldIndex{Field: "Seq"},
					},
					"priority": {
						Name:    "priority",
						Unique:  false,
						Indexer: &FloatFieldIndex{Field: "Priority"},
					},
				},
			},
		},
	}

	db, err := memdb.NewMemDB(schema)
	Ck(err)
	store = &todoStore{db: db}
	return
}

func (s *todoStore) addDated(ev *event.Event, deadline time.Time) error {
	txn := s.db.Txn(true)
	defer txn.Abort()
	rec := &datedTodoRecord{Seq: s.nextSeq, Deadline: deadline, Priority: ev.Priority(), Event: ev}
	s.nextSeq++
	if err := txn.Insert("dated_todo", rec); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

func (s *todoStore) addUndated(ev *event.Event) error {
	txn := s.db.Txn(true)
	defer txn.Abort()
	rec := &undatedTodoRecord{Seq: s.nextSeq, Priority: ev.Priority(), Event: ev}
	s.nextSeq++
	if err := txn.Insert("todo", rec); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

// datedTodos returns every dated todo in ascending deadline order,
// ties broken by insertion order.
func (s *todoStore) datedTodos() ([]*event.Event, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()
	it, err := txn.Get("dated_todo", "deadline_seq")
	if err != nil {
		return nil, err
	}
	var out []*event.Event
	for obj := it.Next(); obj != nil; obj = it.Next() {
		out = append(out, obj.(*datedTodoRecord).Event)
	}
	return out, nil
}

// undatedTodos returns every undated todo in insertion order.
func (s *todoStore) undatedTodos() ([]*event.Event, error) {
	txn := s.db.Txn(false)
	defer txn.Abort()
	it, err := txn.Get("todo", "id")
	if err != nil {
		return nil, err
	}
	var out []*event.Event
	for obj := it.Next(); obj != nil; obj = it.Next() {
		out = append(out, obj.(*undatedTodoRecord).Event)
	}
	return out, nil
}

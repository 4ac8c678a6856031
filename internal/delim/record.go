package delim

import "fmt"

// Field is one named value inside a Record. Fields keep header order.
type Field struct {
	Key   string
	Value string
}

// Record is a single parsed data row: an ordered list of fields, one per
// header column. Field names are unique within a record.
type Record struct {
	fields []Field
}

// NewRecord pairs keys with values positionally. It fails when the slices
// differ in length or when a key repeats.
func NewRecord(keys, values []string) (Record, error) {
	if len(keys) != len(values) {
		return Record{}, fmt.Errorf("field count mismatch: %d names for %d values", len(keys), len(values))
	}
	fields := make([]Field, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for i, k := range keys {
		if _, dup := seen[k]; dup {
			return Record{}, fmt.Errorf("duplicate field name %q", k)
		}
		seen[k] = struct{}{}
		fields[i] = Field{Key: k, Value: values[i]}
	}
	return Record{fields: fields}, nil
}

// Len returns the number of fields.
func (r Record) Len() int { return len(r.fields) }

// Get returns the value stored under key and whether the key exists.
func (r Record) Get(key string) (string, bool) {
	for _, f := range r.fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// Keys returns the field names in order.
func (r Record) Keys() []string {
	keys := make([]string, len(r.fields))
	for i, f := range r.fields {
		keys[i] = f.Key
	}
	return keys
}

// Values returns the field values in order.
func (r Record) Values() []string {
	values := make([]string, len(r.fields))
	for i, f := range r.fields {
		values[i] = f.Value
	}
	return values
}

// Fields returns a copy of the ordered fields.
func (r Record) Fields() []Field {
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return out
}

// RecordSet is the outcome of a successful parse: the header names and
// every accepted record in file order. A nil RecordSet means no usable
// data was produced.
type RecordSet struct {
	Headers []string
	Records []Record
}

// Len returns the number of records. Safe on a nil set.
func (rs *RecordSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.Records)
}

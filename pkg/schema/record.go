package schema

import "fmt"

// Record is one entry of a generic collection. Its "id" is caller generated and immutable.
type Record map[string]any

// ID returns the record's id, or "" when missing.
func (r Record) ID() string {
	return r.String("id")
}

// String returns a field rendered as text, or "" when missing.
func (r Record) String(field string) string {
	v, ok := r[field]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Author returns the identity stamped on the record.
func (r Record) Author() Identity {
	return Identity{
		Username: r.String("createdBy"),
		Name:     r.String("authorName"),
		JobTitle: r.String("authorRole"),
	}
}

// Stamp sets the author fields from id.
func (r Record) Stamp(id Identity) Record {
	r["createdBy"] = id.Username
	r["authorName"] = id.Name
	r["authorRole"] = id.JobTitle
	return r
}

// Clone returns a shallow copy.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

package models

import (
	"bytes"
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// Reserved keys of the flat finding representation
const (
	KeyInterface = "Interface"
	KeyTestName  = "Test Name"
	KeyResult    = "Result"
	KeyMessage   = "Message"
)

// ResilienceMessage is attached to every resisted finding
const ResilienceMessage = "The system is resilient. No vulnerability found."

// IsReservedKey reports whether name collides with a fixed finding key
func IsReservedKey(name string) bool {
	switch name {
	case KeyInterface, KeyTestName, KeyResult, KeyMessage:
		return true
	}
	return false
}

// Field is one name/value pair extracted from a model completion
type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Fields is an ordered open mapping of field name -> value.
// Names are whatever the model emitted; nothing is normalized.
type Fields []Field

// Set adds name or replaces its value. A replaced key keeps its first position.
func (f *Fields) Set(name, value string) {
	for i := range *f {
		if (*f)[i].Name == name {
			(*f)[i].Value = value
			return
		}
	}
	*f = append(*f, Field{Name: name, Value: value})
}

// Get returns the value stored under name
func (f Fields) Get(name string) (string, bool) {
	for _, field := range f {
		if field.Name == name {
			return field.Value, true
		}
	}
	return "", false
}

// Len returns the number of distinct names
func (f Fields) Len() int {
	return len(f)
}

// Finding is the per-record outcome of the pipeline.
// It is a union on Result: resisted findings carry Message, vulnerable ones carry Fields.
type Finding struct {
	Interface string
	TestName  string
	Result    Verdict
	Message   string
	Fields    Fields
}

// NewResistedFinding builds the fixed-shape finding for a record that resisted the attack
func NewResistedFinding(rec TestRecord) Finding {
	return Finding{
		Interface: rec.Interface,
		TestName:  rec.Title,
		Result:    VerdictResisted,
		Message:   ResilienceMessage,
	}
}

// NewVulnerableFinding builds a finding from the extracted fields.
// The fields slice is copied so the finding cannot change after creation.
func NewVulnerableFinding(rec TestRecord, fields Fields) Finding {
	copied := make(Fields, len(fields))
	copy(copied, fields)
	return Finding{
		Interface: rec.Interface,
		TestName:  rec.Title,
		Result:    VerdictVulnerable,
		Fields:    copied,
	}
}

// Vulnerable reports whether the finding is a confirmed vulnerability
func (f Finding) Vulnerable() bool {
	return f.Result == VerdictVulnerable
}

// Entries is the field enumeration shared by every renderer.
// The test name is not an entry: renderers use it as the section heading.
func (f Finding) Entries() []Field {
	entries := []Field{
		{Name: KeyInterface, Value: f.Interface},
		{Name: KeyResult, Value: f.Result.String()},
	}
	if !f.Vulnerable() {
		return append(entries, Field{Name: KeyMessage, Value: f.Message})
	}
	return append(entries, f.Fields...)
}

// Columns returns the flat column names in output order, test name included
func (f Finding) Columns() []Field {
	entries := f.Entries()
	columns := make([]Field, 0, len(entries)+1)
	columns = append(columns, entries[0], Field{Name: KeyTestName, Value: f.TestName})
	return append(columns, entries[1:]...)
}

// MarshalJSON writes the finding as one flat object, keys in column order
func (f Finding) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range f.Columns() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(col.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(col.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// JSONSchema describes the flat finding object: fixed keys plus any extracted string field
func (Finding) JSONSchema() *jsonschema.Schema {
	props := jsonschema.NewProperties()
	props.Set(KeyInterface, &jsonschema.Schema{Type: "string"})
	props.Set(KeyTestName, &jsonschema.Schema{Type: "string"})
	props.Set(KeyResult, &jsonschema.Schema{
		Type: "string",
		Enum: []any{VerdictResisted.String(), VerdictVulnerable.String()},
	})
	props.Set(KeyMessage, &jsonschema.Schema{Type: "string"})

	return &jsonschema.Schema{
		Type:                 "object",
		Description:          "One classified test record. Vulnerable findings carry model-extracted fields.",
		Properties:           props,
		Required:             []string{KeyInterface, KeyTestName, KeyResult},
		AdditionalProperties: &jsonschema.Schema{Type: "string"},
	}
}

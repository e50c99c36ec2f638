// Package review models the editable form shown for an extracted record.
package review

import (
	"fmt"

	"github.com/garyjia/mrsl-intake/internal/domain/classcode"
	"github.com/garyjia/mrsl-intake/internal/domain/entity"
)

// Kind is the control used to edit a field
type Kind string

const (
	KindText   Kind = "text"
	KindSelect Kind = "select"
)

// Option is one choice of a select control
type Option struct {
	Value        string
	Label        string
	Selected     bool
	Unrecognized bool
}

// Field is one rendered form control
type Field struct {
	Key         entity.Field
	Label       string
	Placeholder string
	Kind        Kind
	Value       string
	Null        bool
	Options     []Option
}

type fieldMeta struct {
	label       string
	placeholder string
	kind        Kind
}

var meta = map[entity.Field]fieldMeta{
	entity.FieldClassCode:        {label: "MRSL Class Code", kind: KindSelect},
	entity.FieldInsured:          {label: "Insured", placeholder: "Enter insured name", kind: KindText},
	entity.FieldFormReceivedDate: {label: "Form Received Date", placeholder: "DD/MM/YYYY", kind: KindText},
	entity.FieldInceptionDate:    {label: "Inception Date", placeholder: "DD/MM/YYYY", kind: KindText},
	entity.FieldRenewalDate:      {label: "Renewal Date", placeholder: "DD/MM/YYYY", kind: KindText},
	entity.FieldTotalDue:         {label: "Total Due", placeholder: "0.00", kind: KindText},
	entity.FieldPolicyFee:        {label: "Policy Fee", placeholder: "0.00", kind: KindText},
}

// Label returns the display label of a field
func Label(f entity.Field) string {
	if m, ok := meta[f]; ok {
		return m.label
	}
	return f.String()
}

// Form is an immutable view over one record snapshot
type Form struct {
	record entity.ExtractionRecord
}

// NewForm wraps record; the form keeps its own copy
func NewForm(record entity.ExtractionRecord) Form {
	return Form{record: record.Clone()}
}

// Record returns a copy of the current working record
func (f Form) Record() entity.ExtractionRecord {
	return f.record.Clone()
}

// Fields returns one control per record attribute in display order
func (f Form) Fields() []Field {
	fields := make([]Field, 0, len(entity.Fields))
	for _, key := range entity.Fields {
		m := meta[key]
		value, ok := f.record.Get(key)
		field := Field{
			Key:         key,
			Label:       m.label,
			Placeholder: m.placeholder,
			Kind:        m.kind,
			Value:       value,
			Null:        !ok,
		}
		if m.kind == KindSelect {
			field.Options = ClassCodeOptions(value)
		}
		fields = append(fields, field)
	}
	return fields
}

// ClassCodeOptions lists the reference codes with current selected.
// A current value outside the list is prepended as an unrecognized option so it is shown as is.
func ClassCodeOptions(current string) []Option {
	entries := classcode.All()
	options := make([]Option, 0, len(entries)+2)

	options = append(options, Option{Value: "", Label: "Select class code", Selected: current == ""})
	if current != "" && !classcode.IsKnown(current) {
		options = append(options, Option{
			Value:        current,
			Label:        classcode.Describe(current) + " (unrecognized)",
			Selected:     true,
			Unrecognized: true,
		})
	}
	for _, e := range entries {
		options = append(options, Option{
			Value:    e.Code,
			Label:    e.Code + " - " + e.Description,
			Selected: e.Code == current,
		})
	}
	return options
}

// Apply returns a new Form whose record differs from f only in key.
// The receiver is left untouched.
func (f Form) Apply(key, value string) (Form, error) {
	field, err := entity.ParseField(key)
	if err != nil {
		return f, err
	}
	next, err := f.record.With(field, value)
	if err != nil {
		return f, err
	}
	return Form{record: next}, nil
}

// ApplyAll applies a batch of posted values in display order.
// Unchanged values are skipped; the changed fields are returned.
func (f Form) ApplyAll(values map[string]string) (Form, []entity.Field, error) {
	for key := range values {
		if _, err := entity.ParseField(key); err != nil {
			return f, nil, err
		}
	}

	current := f
	var changed []entity.Field
	for _, key := range entity.Fields {
		value, ok := values[key.String()]
		if !ok {
			continue
		}
		next, err := current.Apply(key.String(), value)
		if err != nil {
			return f, nil, fmt.Errorf("apply %s: %w", key, err)
		}
		if len(next.record.Diff(current.record)) == 0 {
			continue
		}
		current = next
		changed = append(changed, key)
	}
	return current, changed, nil
}

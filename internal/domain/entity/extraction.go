package entity

import (
	"fmt"
	"strings"
)

// Field names a single attribute of an ExtractionRecord. The value is the wire key
// used both in the model response schema and in the webhook payload.
type Field string

const (
	FieldClassCode        Field = "mrsl_class_code"
	FieldInsured          Field = "insured"
	FieldFormReceivedDate Field = "form_received_date"
	FieldInceptionDate    Field = "inception_date"
	FieldRenewalDate      Field = "renewal_date"
	FieldTotalDue         Field = "total_due"
	FieldPolicyFee        Field = "policy_fee"
)

// Fields lists every record attribute in display order
var Fields = []Field{
	FieldClassCode,
	FieldInsured,
	FieldFormReceivedDate,
	FieldInceptionDate,
	FieldRenewalDate,
	FieldTotalDue,
	FieldPolicyFee,
}

// String returns the wire key of the field
func (f Field) String() string {
	return string(f)
}

// IsValid reports whether f is one of the declared record fields
func (f Field) IsValid() bool {
	for _, known := range Fields {
		if f == known {
			return true
		}
	}
	return false
}

// ParseField converts a wire key into a Field
func ParseField(key string) (Field, error) {
	f := Field(strings.TrimSpace(key))
	if !f.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, key)
	}
	return f, nil
}

// ExtractionRecord is the structured result of analysing an insurance document.
// Every attribute is independently nullable: nil means "not confidently extracted".
// Records are values; edits go through With and never mutate a record in place.
type ExtractionRecord struct {
	ClassCode        *string `json:"mrsl_class_code"`
	Insured          *string `json:"insured"`
	FormReceivedDate *string `json:"form_received_date"`
	InceptionDate    *string `json:"inception_date"`
	RenewalDate      *string `json:"renewal_date"`
	TotalDue         *string `json:"total_due"`
	PolicyFee        *string `json:"policy_fee"`
}

// StringPtr returns a pointer to a copy of s
func StringPtr(s string) *string {
	return &s
}

// Get returns the value of a field; ok is false when the field is null
func (r ExtractionRecord) Get(f Field) (value string, ok bool) {
	p := r.slot(f)
	if p == nil || *p == nil {
		return "", false
	}
	return **p, true
}

// Value returns the field value, or an empty string when the field is null
func (r ExtractionRecord) Value(f Field) string {
	v, _ := r.Get(f)
	return v
}

// With returns a new record identical to r except for field f.
// A blank value stores null: an empty string never stands in for null.
func (r ExtractionRecord) With(f Field, value string) (ExtractionRecord, error) {
	if !f.IsValid() {
		return r, fmt.Errorf("%w: %q", ErrUnknownField, f)
	}

	next := r.Clone()
	var v *string
	if strings.TrimSpace(value) != "" {
		v = StringPtr(value)
	}
	*next.slot(f) = v
	return next, nil
}

// Clone returns a deep copy that shares no pointers with r
func (r ExtractionRecord) Clone() ExtractionRecord {
	var out ExtractionRecord
	for _, f := range Fields {
		if v, ok := r.Get(f); ok {
			*out.slot(f) = StringPtr(v)
		}
	}
	return out
}

// Equal compares two records field by field
func (r ExtractionRecord) Equal(other ExtractionRecord) bool {
	return len(r.Diff(other)) == 0
}

// Diff lists the fields whose value or nullness differs between r and other
func (r ExtractionRecord) Diff(other ExtractionRecord) []Field {
	var changed []Field
	for _, f := range Fields {
		a, aok := r.Get(f)
		b, bok := other.Get(f)
		if aok != bok || a != b {
			changed = append(changed, f)
		}
	}
	return changed
}

// IsEmpty reports whether every field is null
func (r ExtractionRecord) IsEmpty() bool {
	for _, f := range Fields {
		if _, ok := r.Get(f); ok {
			return false
		}
	}
	return true
}

func (r *ExtractionRecord) slot(f Field) **string {
	switch f {
	case FieldClassCode:
		return &r.ClassCode
	case FieldInsured:
		return &r.Insured
	case FieldFormReceivedDate:
		return &r.FormReceivedDate
	case FieldInceptionDate:
		return &r.InceptionDate
	case FieldRenewalDate:
		return &r.RenewalDate
	case FieldTotalDue:
		return &r.TotalDue
	case FieldPolicyFee:
		return &r.PolicyFee
	}
	return nil
}

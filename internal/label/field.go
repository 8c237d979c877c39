package label

import (
	"fmt"

	"github.com/google/uuid"
)

// Type identifies the annotation category of a field and determines both
// its default size and the value editor used to fill it.
type Type string

const (
	TypeText      Type = "text"
	TypeSignature Type = "signature"
	TypeDate      Type = "date"
	TypeCheckbox  Type = "checkbox"
	TypeInitial   Type = "initial"
	TypeName      Type = "name"
	TypeAddress   Type = "address"
	TypeEmail     Type = "email"
	TypePhone     Type = "phone"
	TypeCompany   Type = "company"
)

// DefaultColor is the fallback swatch used when a field carries no color.
const DefaultColor = "#3b82f6"

// Checkbox values are stored as literal strings, not native booleans.
const (
	CheckedValue   = "true"
	UncheckedValue = "false"
)

// Field is one placed annotation on a PDF page. Position and size are
// normalized fractions of the page dimensions (0-1), independent of zoom
// and render resolution; conversion to pixel or PDF point space happens at
// the boundaries (see the geom package).
type Field struct {
	ID         string  `json:"id"`
	Type       Type    `json:"type"`
	PageNumber int     `json:"pageNumber"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Value      string  `json:"value"`
	Color      string  `json:"color,omitempty"`
	Icon       string  `json:"icon,omitempty"`
}

// Size holds a field's default dimensions as page fractions.
type Size struct {
	Width  float64
	Height float64
}

var defaultSizes = map[Type]Size{
	TypeText:      {0.30, 0.05},
	TypeSignature: {0.20, 0.10},
	TypeDate:      {0.15, 0.05},
	TypeCheckbox:  {0.05, 0.05},
	TypeInitial:   {0.10, 0.06},
}

// DefaultSize returns the default dimensions for a field type. Free-text
// style types (name, address, email, phone, company) share the text
// default.
func DefaultSize(t Type) Size {
	if s, ok := defaultSizes[t]; ok {
		return s
	}
	return defaultSizes[TypeText]
}

// KnownType reports whether t is one of the supported annotation types.
func KnownType(t Type) bool {
	switch t {
	case TypeText, TypeSignature, TypeDate, TypeCheckbox, TypeInitial,
		TypeName, TypeAddress, TypeEmail, TypePhone, TypeCompany:
		return true
	}
	return false
}

// New creates a field of the given type at a normalized anchor with the
// type's default size, a fresh unique id, and an empty value.
func New(t Type, pageNumber int, x, y float64) Field {
	size := DefaultSize(t)
	return Field{
		ID:         uuid.NewString(),
		Type:       t,
		PageNumber: pageNumber,
		X:          x,
		Y:          y,
		Width:      size.Width,
		Height:     size.Height,
		Value:      "",
	}
}

// EffectiveColor returns the field's color, or the fallback swatch when
// none was supplied.
func (f Field) EffectiveColor() string {
	if f.Color == "" {
		return DefaultColor
	}
	return f.Color
}

// Checked reports whether a checkbox field holds the checked value.
func (f Field) Checked() bool {
	return f.Value == CheckedValue
}

// SetChecked writes the literal "true"/"false" string convention the
// embedding step depends on.
func (f *Field) SetChecked(checked bool) {
	if checked {
		f.Value = CheckedValue
	} else {
		f.Value = UncheckedValue
	}
}

// IsImageValued reports whether the field's value is expected to be a
// raster image data URL rather than literal text.
func (f Field) IsImageValued() bool {
	return f.Type == TypeSignature || f.Type == TypeInitial
}

// Validate checks the field's structural invariants and that its value has
// the shape its type requires.
func (f Field) Validate() error {
	if f.ID == "" {
		return fmt.Errorf("field has no id")
	}
	if !KnownType(f.Type) {
		return fmt.Errorf("unknown field type: %s", f.Type)
	}
	if f.PageNumber < 1 {
		return fmt.Errorf("field %s has invalid page number %d", f.ID, f.PageNumber)
	}
	if f.Width < 0 || f.Height < 0 {
		return fmt.Errorf("field %s has negative size %gx%g", f.ID, f.Width, f.Height)
	}
	if f.Type == TypeCheckbox && f.Value != "" && f.Value != CheckedValue && f.Value != UncheckedValue {
		return fmt.Errorf("field %s: checkbox value must be %q or %q, got %q",
			f.ID, CheckedValue, UncheckedValue, f.Value)
	}
	return nil
}

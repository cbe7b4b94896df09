package models

// ElementType tags the kind of a form element.
type ElementType string

const (
	ElementText      ElementType = "text"
	ElementEmail     ElementType = "email"
	ElementPhone     ElementType = "tel"
	ElementURL       ElementType = "url"
	ElementNumber    ElementType = "number"
	ElementDate      ElementType = "date"
	ElementTime      ElementType = "time"
	ElementTextarea  ElementType = "textarea"
	ElementSelect    ElementType = "select"
	ElementRadio     ElementType = "radio"
	ElementCheckbox  ElementType = "checkbox"
	ElementRating    ElementType = "rating"
	ElementFile      ElementType = "file"
	ElementHeading   ElementType = "heading"
	ElementParagraph ElementType = "paragraph"
	ElementDivider   ElementType = "divider"
)

// ElementTypes lists every known element type in builder order.
var ElementTypes = []ElementType{
	ElementText, ElementEmail, ElementPhone, ElementURL, ElementNumber,
	ElementDate, ElementTime, ElementTextarea, ElementSelect, ElementRadio,
	ElementCheckbox, ElementRating, ElementFile, ElementHeading,
	ElementParagraph, ElementDivider,
}

// Known reports whether t is one of ElementTypes.
func (t ElementType) Known() bool {
	for _, k := range ElementTypes {
		if k == t {
			return true
		}
	}
	return false
}

// Input reports whether elements of this type collect a value.
func (t ElementType) Input() bool {
	switch t {
	case ElementHeading, ElementParagraph, ElementDivider:
		return false
	}
	return t.Known()
}

// Width hints used by the builder.
const (
	WidthFull      = "w-full"
	WidthHalf      = "w-1/2"
	WidthThird     = "w-1/3"
	WidthTwoThirds = "w-2/3"
)

// Validation carries optional per-element input constraints.
type Validation struct {
	Pattern     string `json:"pattern,omitempty"`
	MinLength   *int   `json:"minLength,omitempty"`
	MaxLength   *int   `json:"maxLength,omitempty"`
	CustomError string `json:"customError,omitempty"`
}

// Element lives only inside a form's element sequence. ID doubles as the
// submission payload key.
type Element struct {
	ID           string      `json:"id"`
	Type         ElementType `json:"type" validate:"elementtype"`
	Label        string      `json:"label"`
	Placeholder  string      `json:"placeholder,omitempty"`
	Required     bool        `json:"required,omitempty"`
	Options      []string    `json:"options,omitempty"`
	Width        string      `json:"width,omitempty"`
	Min          *float64    `json:"min,omitempty"`
	Max          *float64    `json:"max,omitempty"`
	Content      string      `json:"content,omitempty"`
	Description  string      `json:"description,omitempty"`
	DefaultValue string      `json:"defaultValue,omitempty"`
	Validation   *Validation `json:"validation,omitempty"`
}

// Clone returns a deep copy of the element.
func (e Element) Clone() Element {
	if e.Options != nil {
		e.Options = append([]string(nil), e.Options...)
	}
	if e.Min != nil {
		v := *e.Min
		e.Min = &v
	}
	if e.Max != nil {
		v := *e.Max
		e.Max = &v
	}
	if e.Validation != nil {
		v := *e.Validation
		e.Validation = &v
	}
	return e
}

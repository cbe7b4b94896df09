package embed

import (
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/shubham-ralli/form-b/internal/models"
)

const (
	inputStyle   = "width: 100%; padding: 12px; border: 1px solid #d1d5db; border-radius: 6px; font-size: 16px; box-sizing: border-box; font-family: inherit;"
	labelStyle   = "display: block; margin-bottom: 8px; font-weight: 500; color: #374151; font-size: 14px;"
	choiceStyle  = "display: flex; align-items: center; font-weight: normal; cursor: pointer;"
	buttonStyle  = "background: #3b82f6; color: white; padding: 12px 24px; border: none; border-radius: 6px; font-size: 16px; cursor: pointer; margin-top: 20px; width: 100%;"
	wrapperStyle = "max-width: 600px; margin: 0 auto; padding: 20px; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; background: white; border-radius: 8px; box-shadow: 0 2px 10px rgba(0,0,0,0.1);"
	formStyle    = "display: flex; flex-wrap: wrap; gap: 16px;"
	errorStyle   = "color: #ef4444; background: #fef2f2; padding: 12px; border-radius: 6px; margin-bottom: 16px; border: 1px solid #fecaca;"

	defaultButtonText = "Submit Form"
	busyButtonText    = "Submitting..."
	defaultRatingMax  = 5
)

// builder renders one element. A nil result renders nothing.
type builder func(models.Element) *html.Node

var builders = map[models.ElementType]builder{
	models.ElementText:      buildInput,
	models.ElementEmail:     buildInput,
	models.ElementPhone:     buildInput,
	models.ElementURL:       buildInput,
	models.ElementNumber:    buildInput,
	models.ElementDate:      buildInput,
	models.ElementTime:      buildInput,
	models.ElementTextarea:  buildTextarea,
	models.ElementSelect:    buildSelect,
	models.ElementRadio:     buildRadio,
	models.ElementCheckbox:  buildCheckbox,
	models.ElementRating:    buildRating,
	models.ElementFile:      buildFile,
	models.ElementHeading:   buildHeading,
	models.ElementParagraph: buildParagraph,
	models.ElementDivider:   buildDivider,
}

// buildForm returns the markup for an active form. action, when set, makes
// the form post natively to that URL.
func buildForm(form *models.PublicForm, action string) *html.Node {
	f := el(atom.Form, "id", "formcraft-form-"+form.ID, "style", formStyle)
	if action != "" {
		setAttr(f, "method", "post")
		setAttr(f, "action", action)
	}
	for _, e := range form.Elements {
		b, ok := builders[e.Type]
		if !ok {
			continue
		}
		appendAll(f, b(e))
	}
	appendAll(f, honeypot())
	label := form.ButtonText
	if label == "" {
		label = defaultButtonText
	}
	appendAll(f, appendAll(el(atom.Button, "type", "submit", "style", buttonStyle), text(label)))

	wrapper := el(atom.Div, "class", "formcraft-form", "style", wrapperStyle)
	appendAll(wrapper, appendAll(el(atom.H2, "style", "margin-bottom: 20px; color: #333; text-align: center;"), text(form.Title)))
	if form.Description != "" {
		appendAll(wrapper, appendAll(el(atom.P, "style", "margin: 0 0 20px 0; color: #6b7280; text-align: center;"), text(form.Description)))
	}
	return appendAll(wrapper, f)
}

func widthStyle(width string) string {
	switch width {
	case models.WidthHalf:
		return "flex: 0 0 calc(50% - 8px);"
	case models.WidthThird:
		return "flex: 0 0 calc(33.333% - 11px);"
	case models.WidthTwoThirds:
		return "flex: 0 0 calc(66.666% - 6px);"
	}
	return "width: 100%;"
}

func field(e models.Element, children ...*html.Node) *html.Node {
	wrap := el(atom.Div, "class", "formcraft-field", "style", "margin-bottom: 0; "+widthStyle(e.Width))
	return appendAll(wrap, children...)
}

func label(e models.Element) *html.Node {
	l := appendAll(el(atom.Label, "for", controlID(e), "style", labelStyle), text(e.Label))
	if e.Required {
		appendAll(l, text(" "), appendAll(el(atom.Span, "style", "color: #ef4444;"), text("*")))
	}
	return l
}

func hint(e models.Element) *html.Node {
	if e.Description == "" {
		return nil
	}
	return appendAll(el(atom.P, "style", "margin: 4px 0 0 0; color: #6b7280; font-size: 13px;"), text(e.Description))
}

func controlID(e models.Element) string { return "formcraft-" + e.ID }

func control(a atom.Atom, e models.Element, attrs ...string) *html.Node {
	n := el(a, append([]string{"id", controlID(e), "name", e.ID}, attrs...)...)
	if e.Required {
		setAttr(n, "required", "")
	}
	return n
}

func buildInput(e models.Element) *html.Node {
	in := control(atom.Input, e, "type", string(e.Type), "style", inputStyle)
	if e.Placeholder != "" {
		setAttr(in, "placeholder", e.Placeholder)
	}
	if e.DefaultValue != "" {
		setAttr(in, "value", e.DefaultValue)
	}
	if e.Type == models.ElementNumber {
		if e.Min != nil {
			setAttr(in, "min", formatNumber(*e.Min))
		}
		if e.Max != nil {
			setAttr(in, "max", formatNumber(*e.Max))
		}
	}
	if v := e.Validation; v != nil {
		if v.Pattern != "" {
			setAttr(in, "pattern", v.Pattern)
		}
		if v.MinLength != nil {
			setAttr(in, "minlength", strconv.Itoa(*v.MinLength))
		}
		if v.MaxLength != nil {
			setAttr(in, "maxlength", strconv.Itoa(*v.MaxLength))
		}
		if v.CustomError != "" {
			setAttr(in, "title", v.CustomError)
		}
	}
	return field(e, label(e), in, hint(e))
}

func buildTextarea(e models.Element) *html.Node {
	ta := control(atom.Textarea, e, "style", inputStyle+" min-height: 100px; resize: vertical;")
	if e.Placeholder != "" {
		setAttr(ta, "placeholder", e.Placeholder)
	}
	if e.DefaultValue != "" {
		appendAll(ta, text(e.DefaultValue))
	}
	return field(e, label(e), ta, hint(e))
}

func buildSelect(e models.Element) *html.Node {
	sel := control(atom.Select, e, "style", inputStyle)
	placeholder := e.Placeholder
	if placeholder == "" {
		placeholder = "Select an option"
	}
	appendAll(sel, appendAll(el(atom.Option, "value", ""), text(placeholder)))
	for _, o := range e.Options {
		opt := appendAll(el(atom.Option, "value", o), text(o))
		if o == e.DefaultValue {
			setAttr(opt, "selected", "")
		}
		appendAll(sel, opt)
	}
	return field(e, label(e), sel, hint(e))
}

func choices(e models.Element, typ string, values, labels []string) *html.Node {
	group := el(atom.Div, "style", "display: flex; flex-direction: column; gap: 8px;")
	if e.Type == models.ElementRating {
		setAttr(group, "style", "display: flex; flex-wrap: wrap; gap: 12px;")
	}
	for i, v := range values {
		in := el(atom.Input, "type", typ, "name", e.ID, "value", v, "style", "margin-right: 8px;")
		if e.Required && typ == "radio" {
			setAttr(in, "required", "")
		}
		if v == e.DefaultValue {
			setAttr(in, "checked", "")
		}
		appendAll(group, appendAll(el(atom.Label, "style", choiceStyle), in, appendAll(el(atom.Span), text(labels[i]))))
	}
	return group
}

func buildRadio(e models.Element) *html.Node {
	return field(e, label(e), choices(e, "radio", e.Options, e.Options), hint(e))
}

// buildCheckbox renders a box per option, or one "true" box labelled with
// the element label when the element has no options.
func buildCheckbox(e models.Element) *html.Node {
	if len(e.Options) > 0 {
		return field(e, label(e), choices(e, "checkbox", e.Options, e.Options), hint(e))
	}
	in := control(atom.Input, e, "type", "checkbox", "value", "true", "style", "margin-right: 8px;")
	if e.DefaultValue == "true" {
		setAttr(in, "checked", "")
	}
	box := appendAll(el(atom.Label, "style", "display: flex; align-items: center; font-weight: 500; color: #374151; cursor: pointer;"),
		in, appendAll(el(atom.Span), text(e.Label)))
	return field(e, box, hint(e))
}

func buildRating(e models.Element) *html.Node {
	n := defaultRatingMax
	if e.Max != nil && *e.Max >= 1 {
		n = int(*e.Max)
	}
	values := make([]string, n)
	for i := range values {
		values[i] = strconv.Itoa(i + 1)
	}
	return field(e, label(e), choices(e, "radio", values, values), hint(e))
}

func buildFile(e models.Element) *html.Node {
	return field(e, label(e), control(atom.Input, e, "type", "file", "style", inputStyle), hint(e))
}

func buildHeading(e models.Element) *html.Node {
	s := e.Content
	if s == "" {
		s = e.Label
	}
	return field(e, appendAll(el(atom.H3, "style", "margin: 8px 0 0 0; color: #111827;"), text(s)))
}

func buildParagraph(e models.Element) *html.Node {
	s := e.Content
	if s == "" {
		s = e.Label
	}
	return field(e, appendAll(el(atom.P, "style", "margin: 0; color: #4b5563;"), text(s)))
}

func buildDivider(e models.Element) *html.Node {
	return field(e, el(atom.Hr, "style", "border: none; border-top: 1px solid #e5e7eb; margin: 8px 0;"))
}

// honeypot is a visually hidden field people leave empty.
func honeypot() *html.Node {
	wrap := el(atom.Div, "aria-hidden", "true", "style", "position: absolute; left: -10000px; width: 1px; height: 1px; overflow: hidden;")
	return appendAll(wrap, el(atom.Input, "type", "text", "name", models.HoneypotField, "tabindex", "-1", "autocomplete", "off"))
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

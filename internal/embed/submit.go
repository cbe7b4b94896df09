package embed

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/shubham-ralli/form-b/internal/apiclient"
	"github.com/shubham-ralli/form-b/internal/log"
	"github.com/shubham-ralli/form-b/internal/models"
)

const submitFailedText = "There was an error submitting the form. Please try again."

// Submit posts the current values of the form mounted in containerID and
// applies the outcome to the page. It reports whether the server accepted
// the submission.
func (r *Renderer) Submit(ctx context.Context, page *Page, containerID string) (ok bool) {
	c := page.ElementByID(containerID)
	m := page.mounts[c]
	if c == nil || m == nil {
		log.Errorf("embed: no form mounted in %q", containerID)
		return false
	}
	form := find(c, isElement(atom.Form))
	if form == nil {
		log.Errorf("embed: form markup missing in %q", containerID)
		return false
	}
	button := find(form, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.DataAtom == atom.Button && strings.EqualFold(attr(n, "type"), "submit")
	})
	original := ""
	if button != nil {
		original = textContent(button)
		setText(button, busyButtonText)
		setAttr(button, "disabled", "")
	}
	restore := func() {
		if button != nil {
			setText(button, original)
			removeAttr(button, "disabled")
		}
	}
	defer func() {
		if v := recover(); v != nil {
			log.Errorf("embed: submit %s: %v", m.form.ID, v)
			restore()
			showSubmitError(form, submitFailedText)
			ok = false
		}
	}()

	if err := m.api.Submit(ctx, m.form.ID, Serialize(form)); err != nil {
		log.Errorf("embed: submit %s: %v", m.form.ID, err)
		restore()
		msg := submitFailedText
		var apiErr *apiclient.APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			msg = apiErr.Message
		}
		showSubmitError(form, msg)
		return false
	}

	delete(page.mounts, c)
	if m.form.SubmissionType == models.SubmissionRedirect && m.form.RedirectURL != "" {
		page.Navigate(m.form.RedirectURL)
		return true
	}
	replaceChildren(c, successNodes(m.form.SuccessMessageHTML)...)
	return true
}

// Serialize collects the successful controls of form the way a browser
// builds FormData. Repeated names accumulate into a []any in document order.
func Serialize(form *html.Node) map[string]any {
	data := map[string]any{}
	add := func(key, val string) {
		switch prev := data[key].(type) {
		case nil:
			data[key] = val
		case []any:
			data[key] = append(prev, val)
		default:
			data[key] = []any{prev, val}
		}
	}
	walk(form, func(n *html.Node) {
		if n.Type != html.ElementNode || hasAttr(n, "disabled") {
			return
		}
		name := attr(n, "name")
		if name == "" {
			return
		}
		switch n.DataAtom {
		case atom.Input:
			switch typ := strings.ToLower(attr(n, "type")); typ {
			case "submit", "button", "reset", "image", "file":
			case "radio", "checkbox":
				if !hasAttr(n, "checked") {
					return
				}
				v := "on"
				if hasAttr(n, "value") {
					v = attr(n, "value")
				}
				add(name, v)
			default:
				v := attr(n, "value")
				if name == models.HoneypotField && v == "" {
					return
				}
				add(name, v)
			}
		case atom.Textarea:
			add(name, textContent(n))
		case atom.Select:
			opts := findAll(n, isElement(atom.Option))
			picked := false
			for _, o := range opts {
				if hasAttr(o, "selected") && !hasAttr(o, "disabled") {
					add(name, optionValue(o))
					picked = true
					if !hasAttr(n, "multiple") {
						break
					}
				}
			}
			if !picked && !hasAttr(n, "multiple") && len(opts) > 0 {
				add(name, optionValue(opts[0]))
			}
		}
	})
	return data
}

// showSubmitError writes msg into the form's error block, creating it as
// the form's first child when needed.
func showSubmitError(form *html.Node, msg string) {
	block := find(form, func(n *html.Node) bool {
		return n.Type == html.ElementNode && hasClass(n, "error-message")
	})
	if block == nil {
		block = el(atom.Div, "class", "error-message", "role", "alert", "style", errorStyle)
		form.InsertBefore(block, form.FirstChild)
	}
	setText(block, msg)
}

func successNodes(markup string) []*html.Node {
	if strings.TrimSpace(markup) == "" {
		return []*html.Node{thankYouBlock()}
	}
	ctx := &html.Node{Type: html.ElementNode, DataAtom: atom.Div, Data: "div"}
	nodes, err := html.ParseFragment(strings.NewReader(markup), ctx)
	if err != nil || len(nodes) == 0 {
		return []*html.Node{thankYouBlock()}
	}
	return nodes
}

// Package embed renders public forms into hosting pages and submits them.
// It works on parsed documents (golang.org/x/net/html) so the same code
// serves the iframe pages of the server and the headless CLI.
//
// Render and Submit never return errors: every failure ends as a visible
// block inside the container.
package embed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/shubham-ralli/form-b/internal/apiclient"
	"github.com/shubham-ralli/form-b/internal/log"
	"github.com/shubham-ralli/form-b/internal/models"
)

const (
	AttrFormID = "data-formcraft-id"
	AttrAPIURL = "data-api-url"

	DefaultDevBaseURL = "http://localhost:3000"
)

// API is the public surface of the FormCraft backend.
type API interface {
	PublicForm(ctx context.Context, id string) (*models.PublicForm, error)
	Submit(ctx context.Context, formID string, data map[string]any) error
}

// State is the outcome of a Render call.
type State int

const (
	StateMissingContainer State = iota
	StateError
	StateConnError
	StateNotFound
	StateInactive
	StateForm
)

func (s State) String() string {
	switch s {
	case StateMissingContainer:
		return "missing-container"
	case StateError:
		return "error"
	case StateConnError:
		return "connection-error"
	case StateNotFound:
		return "not-found"
	case StateInactive:
		return "inactive"
	case StateForm:
		return "form"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type Renderer struct {
	// BaseURL is used when the container carries no data-api-url.
	BaseURL string
	// DevBaseURL is used for pages served from localhost or opened from
	// disk when BaseURL is empty.
	DevBaseURL string
	// Connect returns the API client for a base URL. Defaults to apiclient.
	Connect func(base string) API
	// Action, when set, gives rendered forms a native post target.
	Action func(formID string) string
}

type mount struct {
	form *models.PublicForm
	api  API
}

func (r *Renderer) connect(base string) API {
	if r.Connect != nil {
		return r.Connect(base)
	}
	return apiclient.New(base)
}

// Render mounts form formID into the element containerID of page.
func (r *Renderer) Render(ctx context.Context, page *Page, formID, containerID string) (state State) {
	c := page.ElementByID(containerID)
	if c == nil {
		log.Errorf("embed: container element %q not found", containerID)
		return StateMissingContainer
	}
	if page.mounts == nil {
		page.mounts = map[*html.Node]*mount{}
	}
	delete(page.mounts, c)
	defer func() {
		if v := recover(); v != nil {
			log.Errorf("embed: render %s: %v", formID, v)
			replaceChildren(c, errorBlock(text("Error loading form")))
			state = StateError
		}
	}()

	replaceChildren(c, appendAll(el(atom.Div, "class", "formcraft-loading", "style", "text-align: center; padding: 20px;"), text("Loading form...")))

	base := r.resolveBase(page, c)
	api := r.connect(base)
	form, err := api.PublicForm(ctx, formID)
	switch {
	case err != nil:
		return r.renderFailure(c, base, formID, err)
	case form == nil:
		replaceChildren(c, errorBlock(text("Form not found")))
		return StateNotFound
	case !form.IsActive:
		replaceChildren(c, inactiveBlock())
		return StateInactive
	}
	if form.ID == "" {
		form.ID = formID
	}
	action := ""
	if r.Action != nil {
		action = r.Action(form.ID)
	}
	replaceChildren(c, buildForm(form, action))
	page.mounts[c] = &mount{form: form, api: api}
	return StateForm
}

// AutoInit renders every container that declares a form id and has an
// element id of its own.
func (r *Renderer) AutoInit(ctx context.Context, page *Page) map[string]State {
	states := map[string]State{}
	for _, n := range findAll(page.Root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && hasAttr(n, AttrFormID)
	}) {
		formID, id := attr(n, AttrFormID), attr(n, "id")
		if formID == "" || id == "" {
			continue
		}
		states[id] = r.Render(ctx, page, formID, id)
	}
	return states
}

// resolveBase picks the API origin for a container.
func (r *Renderer) resolveBase(page *Page, c *html.Node) string {
	if v := strings.TrimSpace(attr(c, AttrAPIURL)); v != "" {
		return strings.TrimRight(v, "/")
	}
	if r.BaseURL != "" {
		return strings.TrimRight(r.BaseURL, "/")
	}
	loc := page.Location
	if loc == nil || loc.Scheme == "file" || loc.Host == "" || loc.Hostname() == "localhost" || loc.Hostname() == "127.0.0.1" {
		if r.DevBaseURL != "" {
			return strings.TrimRight(r.DevBaseURL, "/")
		}
		return DefaultDevBaseURL
	}
	return loc.Scheme + "://" + loc.Host
}

func (r *Renderer) renderFailure(c *html.Node, base, formID string, err error) State {
	log.Errorf("embed: load form %s from %s: %v", formID, base, err)
	var connErr *apiclient.ConnError
	var apiErr *apiclient.APIError
	switch {
	case errors.As(err, &connErr):
		msg := appendAll(el(atom.P, "style", "margin: 0; color: #dc2626; font-size: 14px;"),
			text("Cannot connect to FormCraft server at: "), appendAll(el(atom.Code), text(base)))
		replaceChildren(c, errorBlock(appendAll(el(atom.H4, "style", "margin: 0 0 8px 0; color: #dc2626;"), text("Connection Error")), msg))
		return StateConnError
	case apiclient.IsNotFound(err):
		s := "Form not found"
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			s += ": " + apiErr.Message
		}
		replaceChildren(c, errorBlock(text(s)))
		return StateNotFound
	case errors.As(err, &apiErr) && apiErr.Message != "":
		replaceChildren(c, errorBlock(text("Error loading form: "+apiErr.Message)))
	default:
		replaceChildren(c, errorBlock(text("Error loading form")))
	}
	return StateError
}

func errorBlock(children ...*html.Node) *html.Node {
	inner := appendAll(el(atom.Div, "style", "background: #fef2f2; border: 1px solid #fecaca; padding: 16px; border-radius: 8px; color: #dc2626;"), children...)
	return appendAll(el(atom.Div, "class", "formcraft-error", "style", "padding: 20px;"), inner)
}

func inactiveBlock() *html.Node {
	return appendAll(el(atom.Div, "class", "formcraft-inactive", "style", "text-align: center; padding: 40px; color: #ef4444; background: #fef2f2; border: 1px solid #fecaca; border-radius: 8px;"),
		appendAll(el(atom.H3, "style", "margin: 0 0 8px 0; color: #dc2626;"), text("Form Inactive")),
		appendAll(el(atom.P, "style", "margin: 0; color: #dc2626;"), text("This form is currently not active and cannot receive submissions.")),
	)
}

func thankYouBlock() *html.Node {
	return appendAll(el(atom.Div, "class", "formcraft-success", "style", "text-align: center; padding: 40px; color: #059669;"),
		appendAll(el(atom.H3, "style", "margin: 0 0 8px 0; color: #059669;"), text("Thank you!")),
		appendAll(el(atom.P, "style", "margin: 0; color: #6b7280;"), text("Your form has been submitted successfully.")),
	)
}

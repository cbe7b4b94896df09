package handler

import (
	"context"
	_ "embed"
	"encoding/json"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/shubham-ralli/form-b/internal/apiclient"
	"github.com/shubham-ralli/form-b/internal/embed"
	"github.com/shubham-ralli/form-b/internal/log"
	"github.com/shubham-ralli/form-b/internal/models"
	"github.com/shubham-ralli/form-b/internal/service"
)

//go:embed static/embed.js
var loaderScript string

const rootID = "formcraft-root"

const pageShell = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>FormCraft</title>
<style>body { margin: 0; background: transparent; }</style>
</head>
<body>
<div id="` + rootID + `"></div>
<script>
(function () {
  function report() {
    parent.postMessage({ type: "formcraft:height", height: document.documentElement.scrollHeight }, "*");
  }
  window.addEventListener("load", report);
  window.addEventListener("resize", report);
})();
</script>
</body>
</html>`

var redirectPage = template.Must(template.New("redirect").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Redirecting</title></head>
<body>
<p><a href="{{.}}" target="_top">Continue</a></p>
<script>window.top.location.href = {{.}};</script>
</body>
</html>`))

// EmbedHandler serves the loader script and the iframe pages it mounts.
// Pages are rendered server-side by the embed renderer against the
// services in-process.
type EmbedHandler struct {
	forms  *service.FormService
	subs   *service.SubmissionService
	script string
}

func NewEmbedHandler(forms *service.FormService, subs *service.SubmissionService, publicURL string) *EmbedHandler {
	base, _ := json.Marshal(strings.TrimRight(publicURL, "/"))
	return &EmbedHandler{
		forms:  forms,
		subs:   subs,
		script: strings.Replace(loaderScript, `"__FORMCRAFT_PUBLIC_URL__"`, string(base), 1),
	}
}

func (h *EmbedHandler) Script(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.Write([]byte(h.script))
}

func (h *EmbedHandler) Page(w http.ResponseWriter, r *http.Request) {
	page, _, ok := h.render(w, r, localAPI{forms: h.forms, subs: h.subs})
	if ok {
		writePage(w, page)
	}
}

// Submit handles the native post of an iframe form.
func (h *EmbedHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}
	api := localAPI{forms: h.forms, subs: h.subs, origin: service.Origin{IP: clientIP(r), UserAgent: r.UserAgent()}}
	page, renderer, ok := h.render(w, r, api)
	if !ok {
		return
	}
	if renderer == nil {
		writePage(w, page)
		return
	}
	if err := page.Reset(rootID); err != nil {
		log.Debugf("embed: %v", err)
	}
	for name, values := range r.PostForm {
		if err := page.Fill(rootID, name, values...); err != nil {
			log.Debugf("embed: %v", err)
		}
	}
	renderer.Submit(r.Context(), page, rootID)
	if target := page.NavigatedTo(); target != "" {
		if u, err := url.Parse(target); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			log.Warnf("embed: refusing redirect to %q", target)
		} else {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			if err := redirectPage.Execute(w, target); err != nil {
				log.Errorf("embed: write redirect page: %v", err)
			}
			return
		}
	}
	writePage(w, page)
}

// render mounts the form into a fresh page. The renderer is nil when the
// page ended in a state other than a mounted form.
func (h *EmbedHandler) render(w http.ResponseWriter, r *http.Request, api localAPI) (*embed.Page, *embed.Renderer, bool) {
	page, err := embed.ParsePage(strings.NewReader(pageShell), requestURL(r))
	if err != nil {
		log.Errorf("embed: parse page shell: %v", err)
		http.Error(w, "Server error", http.StatusInternalServerError)
		return nil, nil, false
	}
	renderer := &embed.Renderer{
		Connect: func(string) embed.API { return api },
		Action:  func(formID string) string { return "/embed/" + url.PathEscape(formID) },
	}
	if renderer.Render(r.Context(), page, chi.URLParam(r, "formId"), rootID) != embed.StateForm {
		return page, nil, true
	}
	return page, renderer, true
}

func writePage(w http.ResponseWriter, page *embed.Page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(page.HTML()))
}

func requestURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}

// localAPI answers the renderer from the services, with errors shaped the
// way the REST client reports them.
type localAPI struct {
	forms  *service.FormService
	subs   *service.SubmissionService
	origin service.Origin
}

func (a localAPI) PublicForm(ctx context.Context, id string) (*models.PublicForm, error) {
	form, err := a.forms.Public(ctx, id)
	if err != nil {
		return nil, asAPIError(err)
	}
	return form, nil
}

func (a localAPI) Submit(ctx context.Context, formID string, data map[string]any) error {
	_, err := a.subs.Submit(ctx, service.SubmitInput{FormID: formID, Data: data}, a.origin)
	if err != nil {
		return asAPIError(err)
	}
	return nil
}

func asAPIError(err error) error {
	status := serviceStatus(err)
	if status == http.StatusInternalServerError {
		log.Errorf("embed: %v", err)
		return &apiclient.APIError{Status: status, Message: "Server error"}
	}
	return &apiclient.APIError{Status: status, Message: err.Error()}
}

// Package backend adapts the query pipeline to a specific passive-DNS
// service: URL composition, request authentication, status labeling, and
// startup-time verb validation against the service's declared capability
// surface.
package backend

import (
	"context"
	"embed"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
)

//go:embed openapi/dnsdb.yaml openapi/circl.yaml
var openapiDocs embed.FS

// Backend is the pluggable per-service adapter the query pipeline consumes.
type Backend interface {
	// Name identifies the backend for diagnostics and the -u flag.
	Name() string
	// BuildURL prepends the configured base URL to path and attaches the
	// query parameters, encoded in key-sorted order.
	BuildURL(path string, params url.Values) (string, error)
	// AttachAuth sets whichever headers or credentials this backend
	// requires on req.
	AttachAuth(req *http.Request)
	// StatusLabel renders a human label for a non-2xx response.
	StatusLabel(resp *http.Response) string
	// ValidateVerb rejects an unsupported verb/backend combination before
	// any network traffic is attempted.
	ValidateVerb(verb string) error
	// Info returns the backend's declared capability document, for the -I
	// flag.
	Info() ([]byte, error)
}

// base holds the fields and the verb-validation machinery shared by every
// concrete backend.
type base struct {
	name    string
	baseURL string
	docPath string
	doc     *openapi3.T
	router  routers.Router
}

func newBase(name, baseURL, docFile string) (base, error) {
	raw, err := openapiDocs.ReadFile("openapi/" + docFile)
	if err != nil {
		return base{}, fmt.Errorf("backend: reading embedded doc %s: %w", docFile, err)
	}
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return base{}, fmt.Errorf("backend: parsing embedded doc %s: %w", docFile, err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return base{}, fmt.Errorf("backend: invalid embedded doc %s: %w", docFile, err)
	}
	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return base{}, fmt.Errorf("backend: building router for %s: %w", docFile, err)
	}
	return base{name: name, baseURL: baseURL, docPath: docFile, doc: doc, router: router}, nil
}

func (b base) Name() string { return b.name }

func (b base) BuildURL(path string, params url.Values) (string, error) {
	u, err := url.Parse(strings.TrimRight(b.baseURL, "/") + "/" + strings.TrimLeft(path, "/"))
	if err != nil {
		return "", fmt.Errorf("backend: building URL for %s: %w", path, err)
	}
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}
	return u.String(), nil
}

func (b base) Info() ([]byte, error) {
	return b.doc.MarshalJSON()
}

// validateVerb confirms the doc declares at least one path under
// "/<verb>/", and that kin-openapi's router actually resolves a concrete
// instance of that path (placeholders filled with a probe value).
func (b base) validateVerb(verb string) error {
	prefix := "/" + verb + "/"
	for rawPath := range b.doc.Paths.Map() {
		if !strings.HasPrefix(rawPath, prefix) {
			continue
		}
		probePath := fillPlaceholders(rawPath)
		req, err := http.NewRequest(http.MethodGet, "http://backend"+probePath, nil)
		if err != nil {
			continue
		}
		if route, _, err := b.router.FindRoute(req); err == nil && route != nil {
			return nil
		}
	}
	return fmt.Errorf("backend %s: verb %q is not declared in its capability surface", b.name, verb)
}

// fillPlaceholders replaces each "{param}" path template segment with a
// literal probe value so the router can match a concrete request.
func fillPlaceholders(template string) string {
	var b strings.Builder
	inBrace := false
	for _, r := range template {
		switch {
		case r == '{':
			inBrace = true
			b.WriteString("probe")
		case r == '}':
			inBrace = false
		case inBrace:
			// skip: consumed by the "probe" literal above
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

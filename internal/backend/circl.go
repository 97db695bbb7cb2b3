package backend

import (
	"fmt"
	"net/http"
)

// CIRCL adapts the pipeline to a Farsight-compatible CIRCL pDNS-style
// surface. It authenticates with HTTP Basic credentials and serves lookup
// only; ValidateVerb rejects "summarize".
type CIRCL struct {
	base
	Username string
	Password string
}

// NewCIRCL builds a CIRCL backend rooted at baseURL.
func NewCIRCL(baseURL, username, password string) (*CIRCL, error) {
	b, err := newBase("circl", baseURL, "circl.yaml")
	if err != nil {
		return nil, err
	}
	return &CIRCL{base: b, Username: username, Password: password}, nil
}

func (c *CIRCL) AttachAuth(req *http.Request) {
	if c.Username != "" {
		req.SetBasicAuth(c.Username, c.Password)
	}
	req.Header.Set("Accept", "application/x-ndjson")
}

func (c *CIRCL) StatusLabel(resp *http.Response) string {
	switch resp.StatusCode {
	case http.StatusOK:
		return "NOERROR"
	case http.StatusUnauthorized:
		return "AUTH_ERROR"
	case http.StatusNotFound:
		return "NOT_FOUND"
	default:
		return fmt.Sprintf("HTTP_%d", resp.StatusCode)
	}
}

func (c *CIRCL) ValidateVerb(verb string) error {
	return c.validateVerb(verb)
}

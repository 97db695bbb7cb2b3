package backend

import (
	"fmt"
	"net/http"
)

// DNSDB adapts the pipeline to the historical ISC DNSDB v2 REST surface.
type DNSDB struct {
	base
	APIKey string
}

// NewDNSDB builds a DNSDB backend rooted at baseURL (e.g.
// "https://api.dnsdb.info/dnsdb/v2"), authenticating with apiKey.
func NewDNSDB(baseURL, apiKey string) (*DNSDB, error) {
	b, err := newBase("dnsdb", baseURL, "dnsdb.yaml")
	if err != nil {
		return nil, err
	}
	return &DNSDB{base: b, APIKey: apiKey}, nil
}

func (d *DNSDB) AttachAuth(req *http.Request) {
	if d.APIKey != "" {
		req.Header.Set("X-Api-Key", d.APIKey)
	}
	req.Header.Set("Accept", "application/x-ndjson")
}

func (d *DNSDB) StatusLabel(resp *http.Response) string {
	switch resp.StatusCode {
	case http.StatusOK:
		return "NOERROR"
	case http.StatusUnauthorized, http.StatusForbidden:
		return "AUTH_ERROR"
	case http.StatusTooManyRequests:
		return "QUOTA_EXCEEDED"
	case http.StatusBadRequest:
		return "BAD_REQUEST"
	default:
		return fmt.Sprintf("HTTP_%d", resp.StatusCode)
	}
}

func (d *DNSDB) ValidateVerb(verb string) error {
	return d.validateVerb(verb)
}

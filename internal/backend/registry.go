package backend

import "fmt"

// New builds the named backend ("dnsdb" or "circl") from Settings-style
// fields, as selected by the CLI's -u flag.
func New(name, baseURL string, apiKey, username, password string) (Backend, error) {
	switch name {
	case "", "dnsdb":
		return NewDNSDB(baseURL, apiKey)
	case "circl":
		return NewCIRCL(baseURL, username, password)
	default:
		return nil, fmt.Errorf("backend: unknown backend %q", name)
	}
}

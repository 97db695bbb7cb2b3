package archive

import "testing"

func TestParseEndpoint(t *testing.T) {
	cases := []struct {
		in       string
		useSSL   bool
		wantHost string
		wantSSL  bool
	}{
		{"s3.amazonaws.com", true, "s3.amazonaws.com", true},
		{"https://storage.googleapis.com", false, "storage.googleapis.com", true},
		{"http://minio.local:9000", true, "minio.local:9000", false},
	}
	for _, c := range cases {
		host, ssl := parseEndpoint(c.in, c.useSSL)
		if host != c.wantHost || ssl != c.wantSSL {
			t.Errorf("parseEndpoint(%q, %v) = (%q, %v), want (%q, %v)",
				c.in, c.useSSL, host, ssl, c.wantHost, c.wantSSL)
		}
	}
}

func TestNewMinioClientRequiresCredentials(t *testing.T) {
	creds := &Credentials{}
	if _, err := creds.NewMinioClient(); err == nil {
		t.Fatal("expected error for empty credentials")
	}
	creds.Endpoint = "s3.amazonaws.com"
	if _, err := creds.NewMinioClient(); err == nil {
		t.Fatal("expected error for missing access key")
	}
}

package urlpath

import (
	"testing"

	"github.com/pdnsq/dnsdbq/internal/query"
)

func TestBuild(t *testing.T) {
	cases := []struct {
		name string
		b    query.Builder
		want string
	}{
		{
			name: "rrset by name bare",
			b:    query.Builder{Mode: query.ModeRRsetByName, Thing: "example.com"},
			want: "rrset/name/example.com",
		},
		{
			name: "rrset by name with bailiwick implies ANY rrtype",
			b:    query.Builder{Mode: query.ModeRRsetByName, Thing: "example.com", Bailiwick: "com."},
			want: "rrset/name/example.com/ANY/com.",
		},
		{
			name: "rrset by name with rrtype and bailiwick",
			b:    query.Builder{Mode: query.ModeRRsetByName, Thing: "example.com", RRtype: "A", Bailiwick: "com."},
			want: "rrset/name/example.com/A/com.",
		},
		{
			name: "rrset raw",
			b:    query.Builder{Mode: query.ModeRRsetRaw, Thing: "deadbeef", RRtype: "A"},
			want: "rrset/raw/deadbeef/A",
		},
		{
			name: "rdata by name bare",
			b:    query.Builder{Mode: query.ModeRdataByName, Thing: "example.com"},
			want: "rdata/name/example.com",
		},
		{
			name: "rdata by name with rrtype",
			b:    query.Builder{Mode: query.ModeRdataByName, Thing: "example.com", RRtype: "NS"},
			want: "rdata/name/example.com/NS",
		},
		{
			name: "rdata raw",
			b:    query.Builder{Mode: query.ModeRdataRaw, Thing: "cafe"},
			want: "rdata/raw/cafe",
		},
		{
			name: "rdata by ip bare",
			b:    query.Builder{Mode: query.ModeRdataByIP, Thing: "1.2.3.4"},
			want: "rdata/ip/1.2.3.4",
		},
		{
			name: "rdata by ip with prefix length uses comma",
			b:    query.Builder{Mode: query.ModeRdataByIP, Thing: "1.2.3.0", Pfxlen: 24},
			want: "rdata/ip/1.2.3.0,24",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			q, err := c.b.Build()
			if err != nil {
				t.Fatalf("Build query: %v", err)
			}
			got, err := Build(q)
			if err != nil {
				t.Fatalf("Build path: %v", err)
			}
			if got != c.want {
				t.Errorf("Build() = %q, want %q", got, c.want)
			}
		})
	}
}

func TestBuildEscapesOnce(t *testing.T) {
	q, err := query.Builder{Mode: query.ModeRdataByName, Thing: "has space"}.Build()
	if err != nil {
		t.Fatalf("Build query: %v", err)
	}
	got, err := Build(q)
	if err != nil {
		t.Fatalf("Build path: %v", err)
	}
	const want = "rdata/name/has%20space"
	if got != want {
		t.Errorf("Build() = %q, want %q", got, want)
	}
}

// Package collate derives lexicographically-sortable, lossy byte strings
// used only to order and deduplicate passive-DNS records in the external
// sort bridge. Neither key round-trips to the original value.
package collate

import (
	"net/netip"
	"strings"

	"github.com/miekg/dns"
)

// NameKey builds the DNS-name collation key: labels reversed, each
// character lower-cased and hex-expanded, label boundaries preserved as
// literal dots. The root name produces the single byte ".".
//
// Escaped dots and backslashes in presentation form are not honoured; this
// is intentional and documented as lossy in the upstream specification.
func NameKey(name string) string {
	if name == "" || name == "." {
		return "."
	}
	name = strings.TrimSuffix(name, ".")
	labels := strings.Split(name, ".")
	var b strings.Builder
	for i := len(labels) - 1; i >= 0; i-- {
		b.WriteString(hexExpand(strings.ToLower(labels[i])))
		if i > 0 {
			b.WriteByte('.')
		}
	}
	return b.String()
}

// hexExpand renders each byte of s as two lower-case hex digits.
func hexExpand(s string) string {
	const hexDigits = "0123456789abcdef"
	out := make([]byte, 0, len(s)*2)
	for i := 0; i < len(s); i++ {
		c := s[i]
		out = append(out, hexDigits[c>>4], hexDigits[c&0x0f])
	}
	return string(out)
}

// DataKey builds the rdata collation key for one rdata value under rrtype,
// per the dispatch table: addresses sort numerically as parsed bytes, name
// types sort under NameKey, and everything else is hex-expanded whole.
func DataKey(rrtype, value string) string {
	if isKnownType(rrtype, dns.TypeA) {
		return ipKey(value, 4)
	}
	if isKnownType(rrtype, dns.TypeAAAA) {
		return ipKey(value, 16)
	}
	switch strings.ToUpper(rrtype) {
	case "NS", "PTR", "CNAME":
		return NameKey(value)
	case "MX", "RP":
		if i := strings.LastIndexByte(value, ' '); i >= 0 {
			return NameKey(value[i+1:])
		}
		return hexExpand(value)
	default:
		return hexExpand(value)
	}
}

// isKnownType reports whether rrtype, as recognized by miekg/dns's rrtype
// table, names want.
func isKnownType(rrtype string, want uint16) bool {
	t, ok := dns.StringToType[strings.ToUpper(rrtype)]
	return ok && t == want
}

// ipKey parses value as an IPv4 (width 4) or IPv6 (width 16) address and
// hex-expands its bytes; a parse failure falls back to all-zero bytes of
// the expected width so malformed rdata still sorts deterministically.
func ipKey(value string, width int) string {
	addr, err := netip.ParseAddr(value)
	var raw []byte
	switch {
	case err == nil && width == 4 && addr.Is4():
		b := addr.As4()
		raw = b[:]
	case err == nil && width == 16:
		b := addr.As16()
		raw = b[:]
	default:
		raw = make([]byte, width)
	}
	const hexDigits = "0123456789abcdef"
	out := make([]byte, 0, len(raw)*2)
	for _, c := range raw {
		out = append(out, hexDigits[c>>4], hexDigits[c&0x0f])
	}
	return string(out)
}

// DataKeyForValues keys a multi-valued rdata field (JSON array source) by
// concatenating each element's key in array order. Non-string elements are
// the caller's concern; this operates on already-extracted strings.
func DataKeyForValues(rrtype string, values []string) string {
	var b strings.Builder
	for _, v := range values {
		b.WriteString(DataKey(rrtype, v))
	}
	return b.String()
}

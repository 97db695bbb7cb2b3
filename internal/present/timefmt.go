package present

import (
	"os"
	"time"
)

// formatUnix renders a Unix timestamp for diagnostic/text output. The
// DNSDBQ_TIME_FORMAT environment variable selects ISO-8601 rendering;
// any other value (including unset) uses the historical space-separated
// form, per the external-interfaces contract.
func formatUnix(sec int64) string {
	t := time.Unix(sec, 0).UTC()
	if os.Getenv("DNSDBQ_TIME_FORMAT") == "iso" {
		return t.Format("2006-01-02T15:04:05Z")
	}
	return t.Format("2006-01-02 15:04:05")
}

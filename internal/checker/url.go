package checker

import "strings"

// BuildURL maps a record name onto its canonical resource URL: every
// space becomes an underscore, concatenated onto base. No other
// escaping or encoding is applied; the rule must stay bit-exact with
// consumers that build the same links, so malformed names surface as
// probe failures instead of being normalized away here.
func BuildURL(base, name string) string {
	return base + strings.ReplaceAll(name, " ", "_")
}

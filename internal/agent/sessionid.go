package agent

import "regexp"

// The agent backend rejects malformed or foreign identifiers outright instead
// of minting a session, so reuse is gated client-side. Only the canonical
// dashed-hex shape with a v1-v5 version nibble and RFC 4122 variant passes;
// uuid.Parse is too lenient here (it accepts braced and undashed forms the
// backend does not).
var sessionIDPattern = regexp.MustCompile(
	`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[1-5][0-9a-fA-F]{3}-[89abAB][0-9a-fA-F]{3}-[0-9a-fA-F]{12}$`,
)

// IsReusableSessionID reports whether candidate can be presented to the agent
// backend as an existing session identifier.
func IsReusableSessionID(candidate string) bool {
	if candidate == "" {
		return false
	}
	return sessionIDPattern.MatchString(candidate)
}

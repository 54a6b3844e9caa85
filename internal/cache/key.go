package cache

import (
	"strings"
)

// Prefix is the leading segment of every dashboard cache key. Invalidation
// patterns are anchored on it, so it must never collide with other users of
// the same Redis database.
const Prefix = "dashboard"

// Key identifies one cached dashboard payload. Range-scoped dashboards carry
// the resolved from/to dates; tenant-scoped ones leave them empty.
type Key struct {
	Dashboard string
	Tenant    string
	From      string
	To        string
}

// String converts the structured key into the final string used in Redis/map.
// dashboard:<DASHBOARD>:<TENANT> or dashboard:<DASHBOARD>:<TENANT>:<FROM>:<TO>
func (k Key) String() string {
	parts := []string{Prefix, k.Dashboard, k.Tenant}
	if k.From != "" || k.To != "" {
		parts = append(parts, k.From, k.To)
	}
	return strings.Join(parts, ":")
}

// TenantPatterns returns the glob patterns that together cover every key for
// one tenant: the tenant segment is positional (third), and range-less keys
// end right after it, so both shapes are needed.
func TenantPatterns(tenant string) []string {
	return []string{
		Prefix + ":*:" + tenant,
		Prefix + ":*:" + tenant + ":*",
	}
}

// parseKey splits a key back into its segments for logging and metrics.
// Expecting dashboard:<DASHBOARD>:<TENANT>[:<FROM>:<TO>].
func parseKey(key string) (dashboard, tenant string, ok bool) {
	parts := strings.Split(key, ":")
	if (len(parts) != 3 && len(parts) != 5) || parts[0] != Prefix {
		return "", "", false
	}
	return parts[1], parts[2], true
}

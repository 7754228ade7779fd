package requests

import "strings"

const AnonymousName = "Anonymous"

// ResolveDisplayName picks the profile override, then the identity provider
// name, then a placeholder.
func ResolveDisplayName(fullName, providerName string) string {
	if n := strings.TrimSpace(fullName); n != "" {
		return n
	}
	if n := strings.TrimSpace(providerName); n != "" {
		return n
	}
	return AnonymousName
}

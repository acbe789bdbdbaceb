package auth

import (
	"regexp"
	"strings"
)

// RouteRule is a single entry in the route authentication table.
// Exactly one of Pattern or Prefix is set.
type RouteRule struct {
	// Pattern matches the path against an anchored regular expression.
	Pattern *regexp.Regexp

	// Prefix matches any path starting with this string.
	Prefix string

	// RequireAuth is the verdict when the rule matches.
	RequireAuth bool
}

// matches reports whether the rule applies to the given path.
func (r RouteRule) matches(path string) bool {
	if r.Pattern != nil {
		return r.Pattern.MatchString(path)
	}
	return strings.HasPrefix(path, r.Prefix)
}

// RouteRules is an ordered authentication table evaluated first-match-wins.
// Paths matching no rule require authentication.
type RouteRules []RouteRule

// RequiresAuth reports whether a request to path must carry a valid
// access token. Override rules are listed before the exempt prefixes
// they carve out of, so a protected sub-resource of a public prefix
// still demands credentials.
func (rules RouteRules) RequiresAuth(path string) bool {
	for _, rule := range rules {
		if rule.matches(path) {
			return rule.RequireAuth
		}
	}
	return true
}

// DefaultRouteRules returns the authentication table for the API.
//
// Overrides come first: settings, avatar changes, logout and account
// deletion stay protected even though they live under public prefixes.
// Then the public prefixes: auth endpoints, profile browsing, the
// collection catalogue, static assets, API documentation and health.
func DefaultRouteRules() RouteRules {
	return RouteRules{
		// Overrides: protected sub-resources of public prefixes.
		{Pattern: regexp.MustCompile(`^/api/profiles/\d+/user_settings$`), RequireAuth: true},
		{Pattern: regexp.MustCompile(`^/api/profiles/\d+/collector_settings$`), RequireAuth: true},
		{Pattern: regexp.MustCompile(`^/api/profiles/\d+/change_avatar$`), RequireAuth: true},
		{Pattern: regexp.MustCompile(`^/api/auth/logout$`), RequireAuth: true},
		{Pattern: regexp.MustCompile(`^/api/auth/delete$`), RequireAuth: true},

		// Public prefixes.
		{Prefix: "/api/auth/", RequireAuth: false},
		{Prefix: "/api/profiles/", RequireAuth: false},
		{Prefix: "/api/collections", RequireAuth: false},
		{Prefix: "/static/", RequireAuth: false},
		{Prefix: "/docs", RequireAuth: false},
		{Prefix: "/openapi.json", RequireAuth: false},
		{Prefix: "/redoc", RequireAuth: false},
		{Prefix: "/api/health", RequireAuth: false},
	}
}

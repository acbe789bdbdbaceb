package auth

import "testing"

func TestRouteRules_RequiresAuth(t *testing.T) {
	rules := DefaultRouteRules()

	tests := []struct {
		name string
		path string
		want bool
	}{
		// Public prefixes.
		{"login", "/api/auth/login", false},
		{"register", "/api/auth/register", false},
		{"profile view", "/api/profiles/42", false},
		{"collections list", "/api/collections", false},
		{"collection by id", "/api/collections/7", false},
		{"static asset", "/static/avatars/default_avatar.png", false},
		{"docs", "/docs", false},
		{"openapi", "/openapi.json", false},
		{"redoc", "/redoc", false},
		{"health", "/api/health", false},

		// Overrides: protected despite sharing a public prefix.
		{"user settings", "/api/profiles/42/user_settings", true},
		{"collector settings", "/api/profiles/42/collector_settings", true},
		{"change avatar", "/api/profiles/42/change_avatar", true},
		{"logout", "/api/auth/logout", true},
		{"delete account", "/api/auth/delete", true},

		// Overrides are anchored: trailing segments fall back to the prefix rule.
		{"settings sub-path", "/api/profiles/42/user_settings/extra", false},
		{"non-numeric id", "/api/profiles/abc/user_settings", false},

		// Everything unmatched requires auth.
		{"stamps", "/api/stamps/1", true},
		{"stamp create", "/api/stamps/create", true},
		{"admin users", "/api/admin/users", true},
		{"root", "/", true},
		{"unknown", "/api/unknown", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rules.RequiresAuth(tt.path); got != tt.want {
				t.Errorf("RequiresAuth(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestRouteRules_OverridesBeforePrefixes(t *testing.T) {
	rules := DefaultRouteRules()

	// Every override rule must appear before any exempting rule,
	// otherwise a public prefix would swallow its protected sub-paths.
	seenExempt := false
	for i, rule := range rules {
		if !rule.RequireAuth {
			seenExempt = true
		} else if seenExempt {
			t.Errorf("rule %d requires auth but appears after an exempt rule", i)
		}
	}
}

func TestRouteRules_EmptyDefaultsToProtected(t *testing.T) {
	var rules RouteRules
	if !rules.RequiresAuth("/anything") {
		t.Error("an empty rule table must require auth for every path")
	}
}

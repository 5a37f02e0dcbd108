package main

import (
	"net/http"

	"github.com/noah-isme/collab-league-api/internal/middleware"
	"github.com/noah-isme/collab-league-api/internal/models"
)

// routePolicy is the single access table for the API. Routes not listed here
// (sign-up, login, token refresh, password reset, creator discovery) are public.
func routePolicy(prefix string) middleware.RoutePolicy {
	signedIn := middleware.Access{}
	onboarded := func(roles ...models.Role) middleware.Access {
		return middleware.Access{Roles: roles, Onboarded: true}
	}
	admin := onboarded(models.RoleAdmin)

	rules := []struct {
		method string
		path   string
		access middleware.Access
	}{
		{http.MethodPost, "/auth/logout", signedIn},
		{http.MethodPost, "/auth/change-password", signedIn},
		{http.MethodGet, "/auth/me", signedIn},

		{http.MethodGet, "/profile", signedIn},
		{http.MethodGet, "/profile/completion", signedIn},
		{http.MethodPost, "/profile/creator", middleware.Access{Roles: []models.Role{models.RoleCreator}}},
		{http.MethodPut, "/profile/creator", onboarded(models.RoleCreator)},
		{http.MethodPost, "/profile/business", middleware.Access{Roles: []models.Role{models.RoleBusiness}}},
		{http.MethodPut, "/profile/business", onboarded(models.RoleBusiness)},

		{http.MethodPost, "/requests", onboarded(models.RoleBusiness)},
		{http.MethodGet, "/requests/incoming", onboarded(models.RoleCreator)},
		{http.MethodGet, "/requests/sent", onboarded(models.RoleBusiness)},
		{http.MethodGet, "/requests/:id", onboarded(middleware.AnyRole...)},
		{http.MethodPost, "/requests/:id/respond", onboarded(models.RoleCreator)},
		{http.MethodPost, "/requests/:id/cancel", onboarded(models.RoleBusiness)},

		{http.MethodGet, "/campaigns", onboarded(middleware.AnyRole...)},
		{http.MethodGet, "/campaigns/:id", onboarded(middleware.AnyRole...)},
		{http.MethodPatch, "/campaigns/:id/status", onboarded(middleware.MarketplaceRole...)},
		{http.MethodGet, "/campaigns/:id/notes", onboarded(middleware.AnyRole...)},
		{http.MethodPost, "/campaigns/:id/notes", onboarded(middleware.MarketplaceRole...)},

		{http.MethodGet, "/dashboard", onboarded(middleware.MarketplaceRole...)},

		{http.MethodGet, "/admin/overview", admin},
		{http.MethodGet, "/admin/users", admin},
		{http.MethodGet, "/admin/campaigns", admin},
		{http.MethodGet, "/admin/campaigns/export", admin},
		{http.MethodPost, "/admin/creators/:id/toggle-active", admin},
		{http.MethodPost, "/admin/businesses/:id/toggle-verified", admin},
		{http.MethodGet, "/admin/metrics", admin},
	}

	policy := make(middleware.RoutePolicy, len(rules))
	for _, rule := range rules {
		policy[middleware.PolicyKey(rule.method, prefix+rule.path)] = rule.access
	}
	return policy
}

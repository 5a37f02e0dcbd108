package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/collab-league-api/internal/models"
	appErrors "github.com/noah-isme/collab-league-api/pkg/errors"
	"github.com/noah-isme/collab-league-api/pkg/response"
)

// ActorResolver loads the stored role of a caller. Token role claims are never
// trusted for authorization.
type ActorResolver interface {
	Resolve(ctx context.Context, userID string) (*models.Actor, error)
}

// Access describes who may call a route. A zero Access admits any signed-in
// caller, including one without a profile row.
type Access struct {
	Roles     []models.Role
	Onboarded bool
}

// Marketplace roles plus the back office.
var (
	AnyRole         = []models.Role{models.RoleBusiness, models.RoleCreator, models.RoleAdmin}
	MarketplaceRole = []models.Role{models.RoleBusiness, models.RoleCreator}
)

// RoutePolicy maps "METHOD /full/route/pattern" to its access rule. Routes
// missing from the table are public.
type RoutePolicy map[string]Access

// PolicyKey builds the table key for a method and a gin route pattern.
func PolicyKey(method, pattern string) string {
	return method + " " + pattern
}

// Lookup returns the rule for the matched route of c.
func (p RoutePolicy) Lookup(c *gin.Context) (Access, bool) {
	if c.FullPath() == "" {
		return Access{}, false
	}
	rule, ok := p[PolicyKey(c.Request.Method, c.FullPath())]
	return rule, ok
}

// Policy authenticates and authorizes every request against policy. The role
// is read from the store on each request; services re-check on their own.
func Policy(tokens TokenValidator, actors ActorResolver, policy RoutePolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		rule, ok := policy.Lookup(c)
		if !ok {
			c.Next()
			return
		}
		if err := authenticate(c, tokens); err != nil {
			abortWith(c, err)
			return
		}
		if len(rule.Roles) == 0 && !rule.Onboarded {
			c.Next()
			return
		}

		actor, err := actors.Resolve(c.Request.Context(), UserID(c))
		if err != nil {
			abortWith(c, err)
			return
		}
		if len(rule.Roles) > 0 && !actor.HasRole(rule.Roles...) {
			abortWith(c, appErrors.Clone(appErrors.ErrForbidden, ""))
			return
		}
		if rule.Onboarded && !actor.OnboardingComplete {
			abortWith(c, appErrors.Clone(appErrors.ErrOnboardingRequired, ""))
			return
		}
		c.Next()
	}
}

func abortWith(c *gin.Context, err error) {
	response.Error(c, err)
	c.Abort()
}

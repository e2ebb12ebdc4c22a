package middleware

import (
	"context"
	"strings"

	common_api "go-marketplace/internal/common/api"
	"go-marketplace/internal/common/apperr"
	"go-marketplace/internal/common/authz"
	"go-marketplace/internal/common/models"
	"go-marketplace/internal/features/access"

	"github.com/gofiber/fiber/v2"
)

const (
	SessionCookie = "admin_session"
	SessionHeader = "X-Session-ID"

	principalKey = "principal"
)

// AccessRecorder counts access decisions; *metrics.Metrics satisfies it
type AccessRecorder interface {
	ObserveAccess(permission, outcome string)
}

// Access turns the access guard into fiber handlers
type Access struct {
	guard    access.Guard
	recorder AccessRecorder
}

func NewAccess(guard access.Guard, recorder AccessRecorder) *Access {
	return &Access{guard: guard, recorder: recorder}
}

// RequirePermission rejects the request unless the caller holds permission
func (a *Access) RequirePermission(permission string) fiber.Handler {
	required := authz.Parse(permission)
	return func(c *fiber.Ctx) error {
		principal, err := a.guard.Authorize(c.UserContext(), CredentialFrom(c), required)
		a.observe(permission, err)
		if err != nil {
			return common_api.RespondError(c, err)
		}
		bind(c, principal)
		return c.Next()
	}
}

// Authenticated only requires a usable identity
func (a *Access) Authenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, err := a.guard.Authenticate(c.UserContext(), CredentialFrom(c))
		if err != nil {
			return common_api.RespondError(c, err)
		}
		bind(c, principal)
		return c.Next()
	}
}

func (a *Access) observe(permission string, err error) {
	if a.recorder == nil {
		return
	}
	outcome := "allow"
	if err != nil {
		outcome = apperr.KindOf(err).String()
	}
	a.recorder.ObserveAccess(permission, outcome)
}

// CredentialFrom collects the bearer token and session id of a request.
// The session id may come from the cookie or the X-Session-ID header.
func CredentialFrom(c *fiber.Ctx) access.Credential {
	var cred access.Credential

	authHeader := c.Get(fiber.HeaderAuthorization)
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		cred.BearerToken = strings.TrimSpace(authHeader[7:])
	}

	cred.SessionID = c.Cookies(SessionCookie)
	if cred.SessionID == "" {
		cred.SessionID = c.Get(SessionHeader)
	}
	return cred
}

// PrincipalFrom returns the principal bound by RequirePermission or Authenticated
func PrincipalFrom(c *fiber.Ctx) *access.Principal {
	p, _ := c.Locals(principalKey).(*access.Principal)
	return p
}

func bind(c *fiber.Ctx, p *access.Principal) {
	c.Locals(principalKey, p)
	c.SetUserContext(context.WithValue(c.UserContext(), models.AdminIDKey, p.Admin.ID.Hex()))
}

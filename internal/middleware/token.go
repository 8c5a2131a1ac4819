package middleware

import (
	jwtPkg "MoodMate/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const (
	AccessTokenSecret = "JWT_ACCESS_TOKEN_SECRET"
)

type tokenMiddleware struct {
	secretEnvKey string
}

func newTokenMiddleware() *tokenMiddleware {
	return &tokenMiddleware{secretEnvKey: AccessTokenSecret}
}

// NewTokenMiddleware requires a valid session token and stores its session id in Locals.
func (m *middleware) NewTokenMiddleware(ctx *fiber.Ctx) error {
	sid, err := m.sessionFromRequest(ctx)
	if err != nil {
		m.log.WithFields(logrus.Fields{
			"request_id": m.GetRequestID(ctx),
			"path":       ctx.Path(),
			"method":     ctx.Method(),
			"client_ip":  ctx.IP(),
			"error":      err.Error(),
		}).Warn("Session token check failed")
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized, session token invalid or expired",
			"code":  "UNAUTHORIZED",
		})
	}

	ctx.Locals(jwtPkg.SessionLocalsKey, sid)
	return ctx.Next()
}

// NewOptionalTokenMiddleware attaches the session when a valid token is sent and lets the
// request through anonymously otherwise.
func (m *middleware) NewOptionalTokenMiddleware(ctx *fiber.Ctx) error {
	sid, err := m.sessionFromRequest(ctx)
	if err == nil {
		ctx.Locals(jwtPkg.SessionLocalsKey, sid)
	} else if ctx.Get("Authorization") != "" {
		m.log.WithFields(logrus.Fields{
			"request_id": m.GetRequestID(ctx),
			"path":       ctx.Path(),
			"error":      err.Error(),
		}).Debug("Ignoring invalid optional session token")
	}
	return ctx.Next()
}

func (m *middleware) sessionFromRequest(ctx *fiber.Ctx) (string, error) {
	token, err := jwtPkg.TokenFromRequest(ctx)
	if err != nil {
		return "", err
	}
	return jwtPkg.SessionIDFromToken(token, m.token.secretEnvKey)
}

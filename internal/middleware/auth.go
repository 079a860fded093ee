package middleware

import (
	"context"
	"strings"

	"clinic-backend/internal/policy"
	"clinic-backend/pkg/apperror"
	"clinic-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserID = "userID"
	ctxRole   = "role"
	ctxActor  = "actor"

	// ClinicHeader lets an owner pick the clinic they are acting on.
	ClinicHeader = "X-Clinic-ID"
)

// AuthMiddleware accepts "Authorization: Bearer <token>". EventSource and
// WebSocket clients cannot set headers, so a ?token= query value is also read.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := bearerToken(c)
		if err != nil {
			utils.ErrorResponse(c, err)
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(secret, tokenString)
		if err != nil {
			utils.ErrorResponse(c, apperror.Unauthorized("token inválido ou expirado"))
			c.Abort()
			return
		}
		userID, err := claims.UserID()
		if err != nil || userID == 0 {
			utils.ErrorResponse(c, apperror.Unauthorized("token inválido"))
			c.Abort()
			return
		}

		c.Set(ctxUserID, userID)
		c.Set(ctxRole, claims.Role)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if t := c.Query("token"); t != "" {
			return t, nil
		}
		return "", apperror.Unauthorized("token não encontrado")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", apperror.Unauthorized("formato de token inválido")
	}
	return strings.TrimSpace(parts[1]), nil
}

// UserID returns the authenticated user id, 0 outside AuthMiddleware.
func UserID(c *gin.Context) uint64 {
	return c.GetUint64(ctxUserID)
}

type ActorResolver interface {
	ResolveActor(ctx context.Context, userID uint64, clinicHeader string) (policy.Actor, error)
}

// ActingScope loads the user behind the token and builds the policy actor for
// the request. Must run after AuthMiddleware.
func ActingScope(resolver ActorResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := resolver.ResolveActor(c.Request.Context(), UserID(c), c.GetHeader(ClinicHeader))
		if err != nil {
			utils.ErrorResponse(c, err)
			c.Abort()
			return
		}
		c.Set(ctxActor, actor)
		c.Next()
	}
}

// Actor returns the actor set by ActingScope. Without one it returns an
// employee with no clinic, whose read scope is empty and who cannot create.
func Actor(c *gin.Context) policy.Actor {
	if v, ok := c.Get(ctxActor); ok {
		if a, ok := v.(policy.Actor); ok {
			return a
		}
	}
	return policy.Actor{}
}

// RequirePermission rejects the request early when the actor lacks p.
func RequirePermission(p policy.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := policy.Require(Actor(c), p); err != nil {
			utils.ErrorResponse(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}

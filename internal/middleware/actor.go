package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/bitacora-api/internal/services"
	"github.com/sjperalta/bitacora-api/pkg/logger"
)

const ctxActor = "actor"

// ActorResolver maps an authenticated user to the organization they act for
type ActorResolver interface {
	ResolveActor(ctx context.Context, userID uint) (*services.Actor, error)
}

// Actor resolves the organization membership of the authenticated user. It runs
// after Auth; requests from users without a membership stop here with 401.
func Actor(resolver ActorResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		actor, err := resolver.ResolveActor(ctx, GetUserID(c))
		if err != nil {
			if errors.Is(err, services.ErrUnauthenticated) {
				abortUnauthorized(c, err.Error())
				return
			}
			logger.FromContext(ctx).Error("Failed to resolve actor", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   "error interno del servidor",
			})
			return
		}

		c.Set(ctxActor, actor)
		ctx = services.WithClient(ctx, c.ClientIP(), c.Request.UserAgent())
		ctx = logger.WithContext(ctx, logger.FromContext(ctx).With("user_id", actor.UserID, "organization_id", actor.OrganizationID))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetActor returns the actor stored by the Actor middleware, or nil
func GetActor(c *gin.Context) *services.Actor {
	v, ok := c.Get(ctxActor)
	if !ok {
		return nil
	}
	actor, _ := v.(*services.Actor)
	return actor
}

package http

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/carewell-hms/allocation-service/internal/config"
	"github.com/carewell-hms/allocation-service/internal/core/domain"
)

const actorContextKey = "allocation.actor"

// BasicAuth checks the configured service clients. End-user identity does
// not arrive here; the gateway authenticates users and forwards the actor
// headers checked by ActorContext.
func BasicAuth(cfg *config.Config) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		username, password, hasAuth := ctx.Request.BasicAuth()
		if !hasAuth {
			ctx.Header("WWW-Authenticate", "Basic realm=Authorization Required")
			ctx.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		for _, client := range cfg.Auth.BasicClients {
			userMatch := subtle.ConstantTimeCompare([]byte(username), []byte(client.Username)) == 1
			passMatch := subtle.ConstantTimeCompare([]byte(password), []byte(client.Password)) == 1
			if userMatch && passMatch {
				ctx.Next()
				return
			}
		}

		ctx.Header("WWW-Authenticate", "Basic realm=Authorization Required")
		ctx.AbortWithStatus(http.StatusUnauthorized)
	}
}

// ActorContext extracts the authenticated actor forwarded by the identity
// gateway. For doctors, X-Actor-Id carries the doctor record id.
func ActorContext() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		actorID, err := uuid.Parse(ctx.GetHeader("X-Actor-Id"))
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid X-Actor-Id header"})
			return
		}

		role, ok := domain.ParseRole(ctx.GetHeader("X-Actor-Role"))
		if !ok {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid X-Actor-Role header"})
			return
		}

		ctx.Set(actorContextKey, domain.Actor{ID: actorID, Role: role})
		ctx.Next()
	}
}

func actorFromContext(ctx *gin.Context) domain.Actor {
	actor, _ := ctx.MustGet(actorContextKey).(domain.Actor)
	return actor
}

// respondError maps the structured error kinds onto HTTP statuses. Anything
// unclassified is an infrastructure failure.
func respondError(ctx *gin.Context, err error) {
	var status int
	switch domain.KindOf(err) {
	case domain.ErrorKindValidation:
		status = http.StatusBadRequest
	case domain.ErrorKindNotFound:
		status = http.StatusNotFound
	case domain.ErrorKindForbidden:
		status = http.StatusForbidden
	case domain.ErrorKindConflict, domain.ErrorKindCapacity:
		status = http.StatusConflict
	default:
		status = http.StatusInternalServerError
	}

	body := gin.H{"error": err.Error(), "kind": string(domain.KindOf(err))}
	var domainErr *domain.Error
	if errors.As(err, &domainErr) {
		body["error"] = domainErr.Message
		if len(domainErr.Details) > 0 {
			body["details"] = domainErr.Details
		}
	}

	ctx.JSON(status, body)
}

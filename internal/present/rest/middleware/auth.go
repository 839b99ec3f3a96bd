package middleware

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/giftgrove/giftgrove/internal/domain"
	"github.com/giftgrove/giftgrove/internal/service"
)

var tracer = otel.Tracer("auth")

// ActorMiddleware resolves the ambient current actor. Authentication
// happens upstream; by the time a request reaches this service the
// actor header names an already-authenticated account, which is looked
// up and stashed into the request context.
type ActorMiddleware struct {
	directory *service.DirectoryService
}

func NewActorMiddleware(directory *service.DirectoryService) *ActorMiddleware {
	return &ActorMiddleware{
		directory: directory,
	}
}

func (s *ActorMiddleware) IdentifyActor(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, span := tracer.Start(c.Request().Context(), "Auth.Middleware.IdentifyActor")
		defer span.End()

		actorID := c.Request().Header.Get(domain.ActorHeader)
		if actorID != "" {
			actor, err := s.directory.Lookup(ctx, actorID)
			if err != nil {
				span.RecordError(errors.Wrap(err, "ActorMiddleware.IdentifyActor: directory lookup failed"))
			} else {
				ctx = context.WithValue(ctx, domain.ActorCtxKey, actor)
				span.SetAttributes(attribute.String("ActorId", actor.ID))
			}
		}

		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

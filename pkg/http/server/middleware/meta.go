package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rise-and-shine/filestash/pkg/http/server"
	"github.com/rise-and-shine/filestash/pkg/meta"
	"github.com/rise-and-shine/filestash/pkg/tracing"
)

// NewMetaInjectMW creates a middleware that injects metadata into the request context.
//
// This middleware collects information from the request such as trace ID, IP address,
// user agent and referer, and injects them into the request context using the meta
// package. RequestUserID is left empty and is populated later by the authentication
// middleware.
func NewMetaInjectMW(serviceName, serviceVersion string) server.Middleware {
	return server.Middleware{
		Priority: 700,
		Handler: func(c *fiber.Ctx) error {
			metaData := map[meta.ContextKey]string{
				meta.TraceID:           tracing.GetStartingTraceID(c.UserContext()),
				meta.IPAddress:         c.IP(),
				meta.UserAgent:         c.Get(fiber.HeaderUserAgent),
				meta.Referer:           c.Get(fiber.HeaderReferer),
				meta.ServiceNameKey:    serviceName,
				meta.ServiceVersionKey: serviceVersion,

				// set by the authentication middleware after token resolution
				meta.RequestUserID: "",
			}

			ctx := meta.InjectMetaToContext(c.UserContext(), metaData)
			c.SetUserContext(ctx)

			return c.Next()
		},
	}
}

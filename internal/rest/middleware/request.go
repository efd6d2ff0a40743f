package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/mariiahub/taxcore/internal/types"
)

const headerRequestID = "X-Request-ID"

// RequestIDMiddleware propagates or mints the request ID and carries it on
// the request context for log correlation
func RequestIDMiddleware(c *gin.Context) {
	ctx := c.Request.Context()

	requestID := c.GetHeader(headerRequestID)
	if requestID == "" {
		requestID = types.GenerateUUID()
	}

	ctx = context.WithValue(ctx, types.CtxRequestID, requestID)
	c.Request = c.Request.WithContext(ctx)
	c.Header(headerRequestID, requestID)

	c.Next()
}

// TenantMiddleware resolves the tenant for the request. The platform runs
// single tenant today so the default tenant is applied; the context shape
// already supports more.
func TenantMiddleware(c *gin.Context) {
	ctx := c.Request.Context()

	tenantID := c.GetHeader("X-Tenant-ID")
	if tenantID == "" {
		tenantID = types.DefaultTenantID
	}

	ctx = types.SetTenantID(ctx, tenantID)
	ctx = types.SetUserID(ctx, types.DefaultUserID)
	c.Request = c.Request.WithContext(ctx)

	c.Next()
}

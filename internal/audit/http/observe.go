// Package http provides the audit hook for mutating routes and the audit listing endpoint.
package http

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	"github.com/allisson/incidenthub/internal/audit/domain"
	"github.com/allisson/incidenthub/internal/audit/usecase"
	authHTTP "github.com/allisson/incidenthub/internal/auth/http"
	"github.com/allisson/incidenthub/internal/httputil"
)

const maxAuditedBody = 64 << 10

// Observe records an audit entry after the handler has written a 2xx response for an
// authenticated caller. The entity id comes from httputil.EntityID. Recording never
// changes the response.
//
//	incidents.POST("", Observe(recorder, domain.ActionCreate, "Incident"), handler.CreateHandler)
func Observe(recorder usecase.Recorder, action domain.Action, entityType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := captureBody(c)

		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			return
		}
		principal, ok := authHTTP.GetPrincipal(c.Request.Context())
		if !ok {
			return
		}
		entityID, ok := httputil.EntityID(c)
		if !ok {
			return
		}

		metadata := map[string]any{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}
		if body != nil {
			metadata["body"] = body
		}
		if id := requestid.Get(c); id != "" {
			metadata["requestId"] = id
		}

		recorder.Record(c.Request.Context(), usecase.RecordInput{
			Action:     action,
			EntityType: entityType,
			EntityID:   entityID,
			UserID:     principal.UserID,
			Metadata:   metadata,
		})
	}
}

// captureBody decodes a JSON object body and puts the raw bytes back for the handler.
func captureBody(c *gin.Context) map[string]any {
	if c.Request.Body == nil {
		return nil
	}
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxAuditedBody+1))
	if err != nil {
		return nil
	}
	c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(raw), c.Request.Body))

	if len(raw) == 0 || len(raw) > maxAuditedBody {
		return nil
	}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil
	}
	return body
}

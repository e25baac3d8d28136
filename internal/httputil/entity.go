package httputil

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const entityIDKey = "httputil.entity_id"

// SetEntityID records the id of the entity a handler created or changed, for
// middleware that runs after the handler.
func SetEntityID(c *gin.Context, id uuid.UUID) {
	c.Set(entityIDKey, id)
}

// EntityID returns the id recorded by SetEntityID, falling back to the :id path parameter.
func EntityID(c *gin.Context) (uuid.UUID, bool) {
	if v, ok := c.Get(entityIDKey); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id, true
		}
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

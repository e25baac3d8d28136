// Package realtime fans committed mutation facts out to authenticated WebSocket
// connections and sequences every mutation so its fact is only built after commit.
package realtime

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	userDomain "github.com/allisson/incidenthub/internal/user/domain"
)

// Event names carried by facts.
const (
	EventIncidentCreated = "incident:created"
	EventIncidentUpdated = "incident:updated"
	EventCommentCreated  = "comment:created"
	EventCommentUpdated  = "comment:updated"
	EventCommentDeleted  = "comment:deleted"
	EventUserRoleUpdated = "user:role-updated"
)

// Entity types carried by facts and audit records.
const (
	EntityIncident = "Incident"
	EntityComment  = "Comment"
	EntityUser     = "User"
)

// Fact describes a state change that has already been committed. It is never persisted.
type Fact struct {
	Event      string         `json:"event"`
	EntityType string         `json:"entityType"`
	EntityID   string         `json:"entityId"`
	Data       any            `json:"data"`
	Previous   map[string]any `json:"previous,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
	// Channel restricts delivery to one channel. Empty means every connection.
	Channel string `json:"channel,omitempty"`
}

// NewFact builds a global fact stamped with the current time.
func NewFact(event, entityType string, entityID uuid.UUID, data any) Fact {
	return Fact{
		Event:      event,
		EntityType: entityType,
		EntityID:   entityID.String(),
		Data:       data,
		OccurredAt: time.Now().UTC(),
	}
}

// WithPrevious attaches prior field values.
func (f Fact) WithPrevious(previous map[string]any) Fact {
	f.Previous = previous
	return f
}

// To restricts the fact to a single channel.
func (f Fact) To(channel string) Fact {
	f.Channel = channel
	return f
}

// UserChannel is the private channel of one identity.
func UserChannel(id uuid.UUID) string {
	return "user:" + id.String()
}

// RoleChannel is the channel shared by every connection of a role.
func RoleChannel(role userDomain.Role) string {
	return "role:" + string(role)
}

// IsChannel reports whether name is a user: or role: channel.
func IsChannel(name string) bool {
	return strings.HasPrefix(name, "user:") || strings.HasPrefix(name, "role:")
}

// Broadcaster delivers a committed fact to connected clients.
type Broadcaster interface {
	Broadcast(ctx context.Context, fact Fact) error
}

// Mutator runs a state change and announces it once committed.
type Mutator interface {
	Execute(ctx context.Context, mutate func(ctx context.Context) error, fact func() Fact) error
}

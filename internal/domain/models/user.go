package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID         uuid.UUID `json:"id"`
	ExternalID string    `json:"external_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Caller carries the external identity a request acts on behalf of.
// firebase_uid is the name older dashboard clients send.
type Caller struct {
	ExternalID  string `json:"external_id,omitempty"`
	FirebaseUID string `json:"firebase_uid,omitempty"`
}

func (c Caller) Identity() string {
	if id := strings.TrimSpace(c.ExternalID); id != "" {
		return id
	}
	return strings.TrimSpace(c.FirebaseUID)
}

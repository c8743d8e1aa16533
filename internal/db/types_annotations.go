package db

import (
	"time"

	"github.com/google/uuid"
)

// Annotation status values. The core only ever writes pending; review
// transitions happen outside this service.
const (
	AnnotationPending  = "pending"
	AnnotationReviewed = "reviewed"
)

// Annotation is the raw submission preserved for manual review and audit.
// One annotation record exists per submission, created before extraction is
// attempted, so a failed extraction still leaves the raw text recoverable.
type Annotation struct {
	ID        uuid.UUID `json:"id"`
	Content   string    `json:"content"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

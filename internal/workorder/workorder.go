// Package workorder holds the read-only view of the host's maintenance
// records plus the lifecycle-transition classifier shared by every
// notification path.
package workorder

import (
	"strings"
	"time"
)

// WorkOrder mirrors the fields this module reads from the host's maintenance
// request records. The host owns the data; we never write it.
type WorkOrder struct {
	ID          int64      `json:"id"`
	Code        string     `json:"code"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Note        string     `json:"note"` // rich text from the host's editor
	Stage       string     `json:"stage"`
	Technician  string     `json:"technician"`
	Hotel       string     `json:"hotel"`
	Equipment   string     `json:"equipment"`
	Team        string     `json:"team"`
	CreateDate  time.Time  `json:"create_date"`
	CloseDate   *time.Time `json:"close_date,omitempty"`
	// DurationHours is the accumulated time on the order. Absent means zero.
	DurationHours float64 `json:"duration_hours"`
}

// Attachment is a file linked to a work order. Data may be nil when the host
// stores the payload elsewhere; the retrieval URL still works in that case.
type Attachment struct {
	ID       int64  `json:"id"`
	OrderID  int64  `json:"order_id"`
	Name     string `json:"name"`
	Mimetype string `json:"mimetype"`
	Data     []byte `json:"data,omitempty"`
}

// IsImage reports whether the attachment carries an image payload type.
func (a Attachment) IsImage() bool {
	return strings.HasPrefix(strings.ToLower(a.Mimetype), "image/")
}

// Transition is the outcome of classifying one record mutation.
type Transition int

const (
	// NoOp: the stage did not change (or was not part of the update).
	NoOp Transition = iota
	// Created: a new record came into existence.
	Created
	// ClosedAsRepaired: the stage moved to the closure stage.
	ClosedAsRepaired
	// OtherStatusChange: the stage moved to anything but the closure stage.
	OtherStatusChange
)

func (t Transition) String() string {
	switch t {
	case Created:
		return "created"
	case ClosedAsRepaired:
		return "closed"
	case OtherStatusChange:
		return "status-change"
	default:
		return "no-op"
	}
}

// DefaultClosedStage is the stage name the host uses for a finished repair.
// The comparison is case-insensitive everywhere.
const DefaultClosedStage = "reparado"

// Classifier decides what a stage change means. A single classifier instance
// is shared by the gate and the renderer so the ordinary-change and closure
// paths can never disagree about the same event.
type Classifier struct {
	closedStage string
}

// ClassifierFor builds a classifier with a custom closure stage name.
// An empty name falls back to DefaultClosedStage.
func ClassifierFor(closedStage string) Classifier {
	if strings.TrimSpace(closedStage) == "" {
		closedStage = DefaultClosedStage
	}
	return Classifier{closedStage: closedStage}
}

// Classify maps a previous/new stage pair to a Transition.
func (c Classifier) Classify(prev, next string) Transition {
	if c.closedStage == "" {
		c.closedStage = DefaultClosedStage
	}
	if prev == "" || next == "" || prev == next {
		return NoOp
	}
	if strings.EqualFold(next, c.closedStage) {
		return ClosedAsRepaired
	}
	return OtherStatusChange
}

// Classify applies the default classifier.
func Classify(prev, next string) Transition {
	return ClassifierFor(DefaultClosedStage).Classify(prev, next)
}

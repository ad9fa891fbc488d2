package event

import (
	"time"

	"github.com/google/uuid"
	"github.com/viant/procsim/internal/clock"
)

// Type identifies a process lifecycle transition
type Type string

const (
	TypeSubmitted  Type = "submitted"
	TypeWaiting    Type = "waiting"
	TypeAdmitted   Type = "admitted"
	TypeDispatched Type = "dispatched"
	TypeCompleted  Type = "completed"
	TypeCanceled   Type = "canceled"
)

// Types lists every lifecycle event type in lifecycle order
var Types = []Type{TypeSubmitted, TypeWaiting, TypeAdmitted, TypeDispatched, TypeCompleted, TypeCanceled}

// Context locates an event in simulation time
type Context struct {
	EventType Type `json:"eventType" yaml:"eventType"`
	ProcessID int  `json:"processID" yaml:"processID"`
	Tick      int  `json:"tick" yaml:"tick"`
}

// Event carries a transition and its payload
type Event[T any] struct {
	ID        string                 `json:"id" yaml:"id"`
	Context   *Context               `json:"context" yaml:"context"`
	CreatedAt time.Time              `json:"createdAt" yaml:"createdAt"`
	Metadata  map[string]interface{} `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Data      T                      `json:"data" yaml:"data"`
}

// NewEvent creates an event stamped with a fresh id and the wall clock
func NewEvent[T any](context *Context, data T) *Event[T] {
	return &Event[T]{
		ID:        uuid.New().String(),
		Context:   context,
		CreatedAt: clock.Now(),
		Metadata:  make(map[string]interface{}),
		Data:      data,
	}
}

// Type returns the event type, empty when no context is set
func (e *Event[T]) Type() Type {
	if e.Context == nil {
		return ""
	}
	return e.Context.EventType
}

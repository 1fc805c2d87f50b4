package domain

import (
	"time"

	"github.com/google/uuid"
)

// Event is the minimal surface the publisher needs from a domain event.
type Event interface {
	EventID() uuid.UUID
	EventType() string
	AggregateID() uuid.UUID
	OccurredAt() time.Time
}

// Event type names as they appear in the handler registry and on the wire.
const (
	EventContractCreated          = "ContractCreated"
	EventContractContentGenerated = "ContractContentGenerated"
	EventContractActivated        = "ContractActivated"
	EventContractCompleted        = "ContractCompleted"
	EventContractTerminated       = "ContractTerminated"
)

type baseEvent struct {
	ID         uuid.UUID `json:"event_id"`
	ContractID uuid.UUID `json:"contract_id"`
	At         time.Time `json:"occurred_at"`
}

func newBaseEvent(contractID uuid.UUID) baseEvent {
	return baseEvent{ID: uuid.New(), ContractID: contractID, At: time.Now().UTC()}
}

func (b baseEvent) EventID() uuid.UUID     { return b.ID }
func (b baseEvent) AggregateID() uuid.UUID { return b.ContractID }
func (b baseEvent) OccurredAt() time.Time  { return b.At }

// ContractCreated is recorded once by the New factory.
type ContractCreated struct {
	baseEvent
	Title        string       `json:"title"`
	ContractType ContractType `json:"contract_type"`
	ClientName   string       `json:"client_name"`
	CompanyID    uuid.UUID    `json:"company_id"`
	CreatedBy    string       `json:"created_by"`
}

func (ContractCreated) EventType() string { return EventContractCreated }

// ContractContentGenerated is recorded when AI-generated content lands on a draft.
type ContractContentGenerated struct {
	baseEvent
	AIModel          string  `json:"ai_model"`
	ProcessingTimeMS int64   `json:"processing_time_ms"`
	ConfidenceScore  float64 `json:"confidence_score"`
}

func (ContractContentGenerated) EventType() string { return EventContractContentGenerated }

// ContractActivated is recorded on the transition into ACTIVE.
type ContractActivated struct {
	baseEvent
	ActivatedBy   string     `json:"activated_by"`
	ContractValue *Money     `json:"contract_value,omitempty"`
	StartDate     *time.Time `json:"start_date,omitempty"`
}

func (ContractActivated) EventType() string { return EventContractActivated }

// ContractCompleted is recorded on the transition into COMPLETED.
type ContractCompleted struct {
	baseEvent
	CompletedBy      string `json:"completed_by"`
	CompletionReason string `json:"completion_reason,omitempty"`
}

func (ContractCompleted) EventType() string { return EventContractCompleted }

// ContractTerminated is recorded on the transition into TERMINATED.
type ContractTerminated struct {
	baseEvent
	TerminatedBy      string `json:"terminated_by"`
	TerminationReason string `json:"termination_reason"`
}

func (ContractTerminated) EventType() string { return EventContractTerminated }

package store

import (
	"encoding/json"
	"time"
)

type User struct {
	ID                    string
	DisplayName           string
	Email                 string
	PasswordHash          string
	Role                  string
	IsEmailVerified       bool
	VerificationToken     string
	VerificationExpiresAt *time.Time
	DeactivatedAt         *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

type Client struct {
	ID           string
	Name         string
	Company      string
	ContactEmail string
	ContactPhone string
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Project struct {
	ID          string
	ClientID    *string
	Name        string
	Description string
	Status      string // active | archived
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type ProjectMember struct {
	ProjectID string
	UserID    string
	Role      string
	AddedAt   time.Time
	// Joined fields for API responses
	DisplayName string
	Email       string
}

// Message is one chat message. Rich kinds (location, schedule, poll) carry
// their structured content in Payload; plain text leaves it null.
type Message struct {
	ID        string
	RoomID    string
	RoomType  string // project | dm
	AuthorID  string
	Kind      string // text | location | schedule | poll
	Body      string
	Payload   json.RawMessage
	CreatedAt time.Time
	// Joined field for API responses
	AuthorName string
}

type PollVote struct {
	MessageID   string
	UserID      string
	OptionIndex int
	CreatedAt   time.Time
}

type File struct {
	ID          string
	ProjectID   *string
	UploaderID  string
	Name        string
	ObjectKey   string
	ContentType string
	SizeBytes   int64
	CreatedAt   time.Time
}

type Todo struct {
	ID         string
	ProjectID  *string
	AssigneeID string
	Title      string
	Notes      string
	Done       bool
	DueAt      *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Event struct {
	ID        string
	ProjectID *string
	OwnerID   string
	Title     string
	Location  string
	StartsAt  time.Time
	EndsAt    time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Employee struct {
	UserID      string
	Department  string
	JobTitle    string
	SalaryCents int64
	StartDate   time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	// Joined fields for API responses
	DisplayName string
	Email       string
}

type PayrollRun struct {
	ID          string
	PeriodStart time.Time
	PeriodEnd   time.Time
	Status      string // draft | finalized
	CreatedBy   string
	CreatedAt   time.Time
}

type PayrollEntry struct {
	ID         string
	RunID      string
	UserID     string
	GrossCents int64
	TaxCents   int64
	NetCents   int64
	// Joined fields for API responses
	DisplayName string
	Department  string
	JobTitle    string
}

type CallRecord struct {
	ID              string
	UserID          string
	ContactName     string
	ContactNumber   string
	DurationSeconds int
	Transcript      string
	Summary         string
	CreatedAt       time.Time
}

type CallSuggestion struct {
	ID        string
	CallID    string
	Kind      string // followup | todo | schedule
	Body      string
	Status    string // proposed | accepted | dismissed
	CreatedAt time.Time
}

// TriageItem is one email in the triage assistant's queue.
type TriageItem struct {
	ID             string
	UserID         string
	FromAddress    string
	Subject        string
	Body           string
	Status         string // inbox | needs_reply | archived | done
	SuggestedReply string
	ReceivedAt     time.Time
	UpdatedAt      time.Time
}

// ActivityCount is a per-user tally returned by the workload aggregation
// queries.
type ActivityCount struct {
	UserID string
	Count  int
}

package model

import "time"

type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Statuses lists the workflow columns in board order.
var Statuses = []Status{StatusNotStarted, StatusInProgress, StatusCompleted}

func (s Status) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

func (s Status) DisplayName() string {
	switch s {
	case StatusNotStarted:
		return "Not Started"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	}
	return string(s)
}

func (s Status) Color() string {
	switch s {
	case StatusNotStarted:
		return "#ff9800"
	case StatusInProgress:
		return "#2196f3"
	case StatusCompleted:
		return "#4caf50"
	}
	return ""
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Size string

const (
	SizeXS    Size = "XS"
	SizeS     Size = "S"
	SizeM     Size = "M"
	SizeL     Size = "L"
	SizeXL    Size = "XL"
	SizeWeek  Size = "WEEK"
	SizeMonth Size = "MONTH"
	SizeYear  Size = "YEAR"
)

var Sizes = []Size{SizeXS, SizeS, SizeM, SizeL, SizeXL, SizeWeek, SizeMonth, SizeYear}

var sizeDescriptions = map[Size]string{
	SizeXS:    "< 10 mins",
	SizeS:     "< 1 hour",
	SizeM:     "1-2 hours",
	SizeL:     "1 day",
	SizeXL:    "Few days",
	SizeWeek:  "1 week",
	SizeMonth: "1 month",
	SizeYear:  "1 year",
}

func (s Size) Valid() bool {
	_, ok := sizeDescriptions[s]
	return ok
}

// Description is the rough effort a size stands for.
func (s Size) Description() string {
	return sizeDescriptions[s]
}

type Category string

const (
	CategoryPersonal Category = "personal"
	CategoryOffice   Category = "office"
	CategoryCareer   Category = "career"
	CategoryFamily   Category = "family"
)

var Categories = []Category{CategoryPersonal, CategoryOffice, CategoryCareer, CategoryFamily}

func (c Category) Valid() bool {
	switch c {
	case CategoryPersonal, CategoryOffice, CategoryCareer, CategoryFamily:
		return true
	}
	return false
}

type Task struct {
	ID                     int64      `json:"id"`
	UserID                 string     `json:"user_id"`
	Title                  string     `json:"title"`
	Description            string     `json:"description,omitempty"`
	Status                 Status     `json:"status"`
	Priority               Priority   `json:"priority,omitempty"`
	Size                   Size       `json:"size,omitempty"`
	Category               Category   `json:"category,omitempty"`
	ExpectedCompletionDate *time.Time `json:"expected_completion_date,omitempty"`
	StartedAt              *time.Time `json:"started_at,omitempty"`
	CompletedAt            *time.Time `json:"completed_at,omitempty"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

type Action string

const (
	ActionCreated       Action = "created"
	ActionStatusChanged Action = "status_changed"
	ActionFieldUpdated  Action = "field_updated"
	ActionCommentAdded  Action = "comment_added"
)

type HistoryRecord struct {
	ID             int64     `json:"id"`
	TaskID         int64     `json:"task_id"`
	Action         Action    `json:"action"`
	PreviousStatus Status    `json:"previous_status,omitempty"`
	NewStatus      Status    `json:"new_status,omitempty"`
	FieldName      string    `json:"field_name,omitempty"`
	OldValue       string    `json:"old_value,omitempty"`
	NewValue       string    `json:"new_value,omitempty"`
	ChangedAt      time.Time `json:"changed_at"`
	ChangedBy      string    `json:"changed_by"`
}

// Summary renders the record the way the detail page lists it.
func (h HistoryRecord) Summary() string {
	switch h.Action {
	case ActionCreated:
		return "Task created"
	case ActionStatusChanged:
		previous := "none"
		if h.PreviousStatus != "" {
			previous = h.PreviousStatus.DisplayName()
		}
		return "Status changed from " + previous + " to " + h.NewStatus.DisplayName()
	case ActionFieldUpdated:
		return h.FieldName + ` updated from "` + h.OldValue + `" to "` + h.NewValue + `"`
	case ActionCommentAdded:
		return "Comment added"
	}
	return string(h.Action)
}

type Comment struct {
	ID        int64     `json:"id"`
	TaskID    int64     `json:"task_id"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// User is the authenticated identity the auth provider hands out.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// TaskDraft holds the fields of the create form. The store assigns the id and
// every new task starts as not_started.
type TaskDraft struct {
	Title                  string     `json:"title"`
	Description            string     `json:"description"`
	Priority               Priority   `json:"priority"`
	Size                   Size       `json:"size"`
	Category               Category   `json:"category"`
	ExpectedCompletionDate *time.Time `json:"expected_completion_date"`
}

// TaskPatch is a partial edit. Nil fields are left alone; the Clear* flags
// unset the optional columns.
type TaskPatch struct {
	Title                  *string    `json:"title,omitempty"`
	Description            *string    `json:"description,omitempty"`
	Status                 *Status    `json:"status,omitempty"`
	Priority               *Priority  `json:"priority,omitempty"`
	Size                   *Size      `json:"size,omitempty"`
	Category               *Category  `json:"category,omitempty"`
	ExpectedCompletionDate *time.Time `json:"expected_completion_date,omitempty"`

	ClearPriority               bool `json:"clear_priority,omitempty"`
	ClearSize                   bool `json:"clear_size,omitempty"`
	ClearCategory               bool `json:"clear_category,omitempty"`
	ClearExpectedCompletionDate bool `json:"clear_expected_completion_date,omitempty"`

	// IfUpdatedAt makes the edit conditional on the task not having been
	// modified since the editor loaded it.
	IfUpdatedAt *time.Time `json:"if_updated_at,omitempty"`
}

func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil && p.Priority == nil &&
		p.Size == nil && p.Category == nil && p.ExpectedCompletionDate == nil &&
		!p.ClearPriority && !p.ClearSize && !p.ClearCategory && !p.ClearExpectedCompletionDate
}

package entity

import "time"

// Task belongs to exactly one owner. OwnerID never changes after creation.
type Task struct {
	ID          string
	Description string
	Completed   bool
	OwnerID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type TaskPatch struct {
	Description *string
	Completed   *bool
}

func (p TaskPatch) Empty() bool {
	return p.Description == nil && p.Completed == nil
}

// SortField names a sortable task column.
type SortField string

const (
	SortByCreatedAt   SortField = "createdAt"
	SortByUpdatedAt   SortField = "updatedAt"
	SortByDescription SortField = "description"
	SortByCompleted   SortField = "completed"
)

// TaskFilter narrows an owner's task listing.
type TaskFilter struct {
	Completed *bool
	// Search is a case-insensitive substring of the description
	Search string
	Limit  int
	Skip   int
	Sort   SortField
	Desc   bool
}

package entity

import "time"

// Board is a post on the board. CreatedBy is the owner.
type Board struct {
	ID        int64
	Title     string
	Content   string
	State     State
	CreatedBy string
	UpdatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Comment belongs to a Board and is owned by CreatedBy.
type Comment struct {
	ID        int64
	BoardID   int64
	Content   string
	State     State
	CreatedBy string
	UpdatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Attachment is the metadata row for one stored file. The bytes live in
// blob storage at StoredPath; the row is only ever soft-deleted.
type Attachment struct {
	ID          int64
	BoardID     int64
	StoredPath  string
	DisplayName string
	ContentType string
	Size        int64
	State       State
	CreatedBy   string
	UpdatedBy   string
	CreatedAt   time.Time
}

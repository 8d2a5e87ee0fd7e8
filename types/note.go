package types

import "time"

// DefaultNoteCategory is assigned when a note is created or updated
// without an explicit category.
const DefaultNoteCategory = "General"

// Note represents a single note in the shared collection.
// Notes are global; there is no per-user ownership.
type Note struct {
	// ID is the unique identifier of the note.
	ID string `json:"id" db:"id"`

	// Title is the human-readable name of the note. Required.
	Title string `json:"title" db:"title"`

	// Content is the body text of the note. Required.
	Content string `json:"content" db:"content"`

	// Category groups notes for filtering. Defaults to "General".
	Category string `json:"category" db:"category"`

	// Image is the absolute URL of the attached image in the upload
	// store, or nil when no image is attached. The note references the
	// file; it does not own it, and deleting the note leaves the file
	// in place.
	Image *string `json:"image" db:"image"`

	// CreatedAt is the timestamp at which the note was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the note.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

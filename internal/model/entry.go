package model

import "github.com/google/uuid"

// Entry is a single todo item. Editing is client edit state but is stored
// alongside the rest of the row.
type Entry struct {
	ID        uuid.UUID `json:"id" msgpack:"id"`
	Content   string    `json:"content" msgpack:"content"`
	Completed bool      `json:"completed" msgpack:"completed"`
	Editing   bool      `json:"editing" msgpack:"editing"`
}

// NewEntry returns an active, non-editing entry with a fresh v4 id.
func NewEntry(content string) Entry {
	return Entry{
		ID:      uuid.New(),
		Content: content,
	}
}

// TaskRequest is the create payload.
type TaskRequest struct {
	Content string `json:"content" msgpack:"content"`
}

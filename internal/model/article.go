package model

import "time"

// Article is a cataloged document: bibliographic metadata plus a reference
// into the object store where the PDF payload lives. This is a pure domain
// model with no database-specific dependencies or tags; it can be used across
// layers (HTTP, service, storage) without coupling to persistence.
type Article struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Authors         string    `json:"authors"`
	PublicationYear *int      `json:"publication_year,omitempty"`
	Keywords        string    `json:"keywords,omitempty"`
	Topic           string    `json:"topic,omitempty"`
	StorageKey      string    `json:"storage_key"`
	Filename        string    `json:"filename"`
	Size            int64     `json:"size"`
	ContentType     string    `json:"content_type"`
	OwnerID         string    `json:"owner_id"`
	UploadedAt      time.Time `json:"uploaded_at"`
}

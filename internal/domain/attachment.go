package domain

import "time"

// Attachment records metadata for a file associated with a ticket.
// The binary content lives in the blob store under StoredPath.
type Attachment struct {
	ID         int64
	TicketID   int64
	UploaderID int64
	Filename   string
	StoredPath string
	MimeType   string
	SizeBytes  int64
	CreatedAt  time.Time
}

package domain

import "time"

// DocumentChange is a detected change to the served document.
type DocumentChange struct {
	// Path is the served file.
	Path string

	// ModifiedAt is the file modification time that triggered the change.
	ModifiedAt time.Time

	// Content holds the new bytes. It may be nil when only a bare reload is published.
	Content []byte
}

// ServeStatus summarises the serving side for status reporting.
type ServeStatus struct {
	Path              string
	LastModified      time.Time
	Clients           int
	NotificationsSent int
}

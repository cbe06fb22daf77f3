package models

// SessionSnapshot is a named, timestamped, immutable copy of a transcript,
// stored one file per save.
type SessionSnapshot struct {
	Name      string    `json:"name"`
	Timestamp string    `json:"timestamp"`
	Messages  []Message `json:"messages"`
}

// SessionInfo is the listing view of a stored snapshot.
type SessionInfo struct {
	Filename     string `json:"filename"`
	Name         string `json:"name"`
	Timestamp    string `json:"timestamp"`
	MessageCount int    `json:"message_count"`
}

// SearchResult is one transcript hit with its immediate neighbors, nil at
// the list boundaries.
type SearchResult struct {
	Before *Message `json:"before"`
	Match  Message  `json:"match"`
	After  *Message `json:"after"`
	Index  int      `json:"index"`
}

// Notification is a proposed reminder detected inside a chat question.
// Scheduling belongs to the client.
type Notification struct {
	DelaySeconds int    `json:"delay_seconds"`
	Message      string `json:"message"`
}

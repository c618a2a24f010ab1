package models

import "time"

const DefaultEntryType = "daily"

type JournalEntry struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Date       string    `json:"date"`
	Content    string    `json:"content"`
	PromptUsed *string   `json:"promptUsed"`
	EntryType  string    `json:"entryType"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (e *JournalEntry) OwnerID() string { return e.UserID }

// JournalPatch carries the mutable journal fields. Nil means "keep".
type JournalPatch struct {
	Content    *string
	PromptUsed *string
}

package models

import "time"

// AiDraft is a saved rewrite. Texts are fixed at creation; only the flags change.
type AiDraft struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"userId"`
	OriginalText       string    `json:"originalText"`
	RewrittenText      string    `json:"rewrittenText"`
	RiskHighlights     *string   `json:"riskHighlights"`
	AcceptedDisclaimer bool      `json:"acceptedDisclaimer"`
	Exported           bool      `json:"exported"`
	CreatedAt          time.Time `json:"createdAt"`
}

func (d *AiDraft) OwnerID() string { return d.UserID }

type DraftFlagsPatch struct {
	AcceptedDisclaimer *bool
	Exported           *bool
}

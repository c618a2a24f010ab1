package models

import "time"

// TemplateUse records that a user downloaded a template document.
type TemplateUse struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	TemplateType string    `json:"templateType"`
	Phase        *int      `json:"phase"`
	DownloadedAt time.Time `json:"downloadedAt"`
}

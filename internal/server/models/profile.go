package models

import "time"

// Profile is the single settings record a user owns.
type Profile struct {
	ID                  string    `json:"id"`
	UserID              string    `json:"userId"`
	Name                *string   `json:"name"`
	LegalSituation      *string   `json:"legalSituation"`
	ChildDetails        *string   `json:"childDetails"`
	EmergencyContacts   *string   `json:"emergencyContacts"`
	UnderAvo            *bool     `json:"underAvo"`
	OnboardingCompleted bool      `json:"onboardingCompleted"`
	CreatedAt           time.Time `json:"createdAt"`
}

// ProfilePatch carries the fields supplied to an upsert. Nil means "keep".
type ProfilePatch struct {
	Name                *string
	LegalSituation      *string
	ChildDetails        *string
	EmergencyContacts   *string
	UnderAvo            *bool
	OnboardingCompleted *bool
}

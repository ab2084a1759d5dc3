package model

import "time"

const (
	PlanIndividual = "individual"
	PlanDuo        = "duo"
	PlanFamilia    = "familia"
	PlanDependent  = "dependent"
)

const (
	SubscriptionActive  = "active"
	SubscriptionPending = "pending"
)

const StageNew = "new"

// User rows hold both buyers and dependents. A dependent is a row whose
// ParentID references the buying user; it carries a phone and no email.
type User struct {
	ID       string `gorm:"primaryKey;size:64;not null"`
	Email    string `gorm:"size:255;index"`
	Phone    string `gorm:"size:16;index"` // digit-only international format
	ParentID string `gorm:"size:64;index"` // set on dependent rows only

	// MaxDependents is written by the payment pipeline after checkout; nil
	// means the record exists but provisioning has not finished yet.
	MaxDependents *int `gorm:"column:max_dependents"`

	PlanType           string `gorm:"size:32;not null"` // individual, duo, familia, dependent
	SubscriptionStatus string `gorm:"size:32;index;not null"`
	FunnelStage        string `gorm:"size:32"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Provisioned reports whether the payment pipeline has finished writing the
// record. A missing seat count is distinct from a missing record.
func (u *User) Provisioned() bool {
	return u.MaxDependents != nil
}

// SeatCount is the number of additional seats purchased, 0 while the record
// is unprovisioned or for single-seat plans.
func (u *User) SeatCount() int {
	if u.MaxDependents == nil {
		return 0
	}
	return *u.MaxDependents
}

// PlanLabel maps a plan identifier to its customer-facing label. Unknown
// values fall back to the single-seat label.
func PlanLabel(planType string) string {
	switch planType {
	case PlanDuo:
		return "Duo"
	case PlanFamilia:
		return "Família"
	default:
		return "Individual"
	}
}

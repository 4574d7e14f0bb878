package domain

import (
	"time"

	"github.com/google/uuid"
)

// CampaignType enumerates the promotional rule kinds a tenant can configure.
type CampaignType string

const (
	CampaignWelcome        CampaignType = "WELCOME"
	CampaignReferral       CampaignType = "REFERRAL"
	CampaignFestival       CampaignType = "FESTIVAL"
	CampaignMonthlyDeposit CampaignType = "MONTHLY_DEPOSIT"
	CampaignBetThreshold   CampaignType = "BET_THRESHOLD"
)

// BonusCampaign is a tenant-scoped promotional rule. Campaigns are archived
// (Active=false) rather than deleted so historical grant attribution survives.
type BonusCampaign struct {
	ID                 uuid.UUID    `json:"id"`
	TenantID           uuid.UUID    `json:"tenant_id"`
	Name               string       `json:"name"`
	Type               CampaignType `json:"type"`
	Amount             int64        `json:"amount"`              // reward, minor units
	WagerTarget        int64        `json:"wager_target"`        // BET_THRESHOLD: cumulative wagering that triggers the grant
	WageringMultiplier float64      `json:"wagering_multiplier"` // unlock requirement on granted bonuses
	StartsAt           time.Time    `json:"starts_at"`
	EndsAt             *time.Time   `json:"ends_at,omitempty"`
	Active             bool         `json:"active"`
	CreatedAt          time.Time    `json:"created_at"`
}

// WindowContains reports whether the campaign's activity window includes t.
func (c *BonusCampaign) WindowContains(t time.Time) bool {
	if t.Before(c.StartsAt) {
		return false
	}
	return c.EndsAt == nil || !t.After(*c.EndsAt)
}

// WindowEnd returns the effective end of the campaign window for aggregation.
func (c *BonusCampaign) WindowEnd(now time.Time) time.Time {
	if c.EndsAt != nil {
		return *c.EndsAt
	}
	return now
}

// BonusStatus tracks the lifecycle of a player's bonus grant.
type BonusStatus string

const (
	BonusActive    BonusStatus = "ACTIVE"
	BonusCompleted BonusStatus = "COMPLETED"
)

// PlayerBonus is one promotional grant. A player holds at most one ACTIVE
// grant at a time; WagerTarget = InitialAmount × campaign multiplier.
type PlayerBonus struct {
	ID            uuid.UUID   `json:"id"`
	PlayerID      uuid.UUID   `json:"player_id"`
	CampaignID    uuid.UUID   `json:"campaign_id"`
	Status        BonusStatus `json:"status"`
	InitialAmount int64       `json:"initial_amount"`
	WagerTarget   int64       `json:"wager_target"`
	Wagered       int64       `json:"wagered"`
	AwardedAt     time.Time   `json:"awarded_at"`
	CompletedAt   *time.Time  `json:"completed_at,omitempty"`
}

// UnlockReached reports whether cumulative wagering has met the target.
func (pb *PlayerBonus) UnlockReached() bool {
	return pb.Wagered >= pb.WagerTarget
}

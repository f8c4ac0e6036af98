package db

import (
	"fmt"
	"time"
)

type Sex string

const (
	SexMale   Sex = "M"
	SexFemale Sex = "F"
)

// Valid reports whether s is one of the two supported values.
func (s Sex) Valid() bool { return s == SexMale || s == SexFemale }

// Opposite returns the other sex.
func (s Sex) Opposite() Sex {
	if s == SexMale {
		return SexFemale
	}
	return SexMale
}

type Subscription string

const (
	SubscriptionBase    Subscription = "base"
	SubscriptionVIP     Subscription = "vip"
	SubscriptionPremium Subscription = "premium"
)

// TierPolicy is the per-tier rule set: how many swipes a day the tier
// grants and whether it may override the search radius.
type TierPolicy struct {
	DailySwipes  int // negative means unlimited
	CanSetRadius bool
}

// Policy returns the policy for the tier. Unknown tiers fall back to base.
func (s Subscription) Policy() TierPolicy {
	switch s {
	case SubscriptionVIP:
		return TierPolicy{DailySwipes: 100}
	case SubscriptionPremium:
		return TierPolicy{DailySwipes: -1, CanSetRadius: true}
	default:
		return TierPolicy{DailySwipes: 20}
	}
}

// UnlimitedSwipes reports whether the tier never decrements the swipe counter.
func (s Subscription) UnlimitedSwipes() bool { return s.Policy().DailySwipes < 0 }

// User table
type User struct {
	ID              uint64       `gorm:"primaryKey;autoIncrement"`
	Username        string       `gorm:"uniqueIndex;size:64;not null"`
	Email           string       `gorm:"uniqueIndex;size:128;not null"`
	PasswordHash    string       `gorm:"size:255;not null"`
	Sex             Sex          `gorm:"size:1;not null"`
	Age             int          `gorm:"not null"`
	PreferredSex    Sex          `gorm:"size:1;not null"`
	PreferredAgeMin int          `gorm:"not null"`
	PreferredAgeMax int          `gorm:"not null"`
	Subscription    Subscription `gorm:"size:16;not null;default:base"`
	SearchRadiusKm  float64      `gorm:"not null;default:10"`
	SwipesRemaining int          `gorm:"not null;default:20"`
	Location        *Location    `gorm:"foreignKey:UserID"`
	CreatedAt       time.Time    `gorm:"autoCreateTime"`
	UpdatedAt       time.Time    `gorm:"autoUpdateTime"`
}

// Location is a user's last shared position. One row per user; UpdatedAt
// anchors the update cooldown window.
type Location struct {
	UserID    uint64    `gorm:"primaryKey"`
	Longitude float64   `gorm:"type:decimal(11,8);not null"`
	Latitude  float64   `gorm:"type:decimal(10,8);not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// Relationship is a directed like/dislike edge.
//
// Composite PK: (ActorID, RecipientID)
//   - One row per ordered pair; creation is idempotent and rows are never
//     updated or deleted.
//
// Index idx_recipient_liked(recipient_id, liked, actor_id) serves the
// "who disliked me" exclusion and mutual-match lookups.
type Relationship struct {
	ActorID     uint64    `gorm:"primaryKey"`
	RecipientID uint64    `gorm:"primaryKey;index:idx_recipient_liked,priority:1"`
	Liked       bool      `gorm:"not null;type:tinyint(1);index:idx_recipient_liked,priority:2"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

// Chat pairs exactly two users. PairKey is the canonical "lo:hi" id pair and
// its unique index is what makes concurrent mutual swipes produce one chat.
type Chat struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	PairKey   string    `gorm:"uniqueIndex;size:64;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// ChatParticipant is the chat membership join row. At most two per chat,
// enforced at insert time.
type ChatParticipant struct {
	ChatID uint64 `gorm:"primaryKey"`
	UserID uint64 `gorm:"primaryKey;index"`
}

// Message belongs to one chat. SenderID is nullable so messages survive
// sender deletion. Immutable once created.
type Message struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	ChatID    uint64    `gorm:"not null;index:idx_chat_created,priority:1"`
	SenderID  *uint64   `gorm:"index"`
	Text      string    `gorm:"size:1000;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_chat_created,priority:2"`
}

// PairKey builds the canonical chat key for a user pair, smaller id first.
func PairKey(a, b uint64) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}

// Package models contains the record types persisted by the store.
package models

import (
	"time"
)

// VoiceKind tells how a voice was produced.
type VoiceKind string

const (
	VoiceCustom    VoiceKind = "custom"
	VoiceGenerated VoiceKind = "generated"
	VoiceCloned    VoiceKind = "cloned"
)

// Valid reports whether k is a known kind.
func (k VoiceKind) Valid() bool {
	switch k {
	case VoiceCustom, VoiceGenerated, VoiceCloned:
		return true
	}
	return false
}

// VoiceKinds lists every kind in display order.
func VoiceKinds() []VoiceKind {
	return []VoiceKind{VoiceCustom, VoiceGenerated, VoiceCloned}
}

type Account struct {
	ID           int64
	Email        string
	PasswordHash string
	Name         string
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

// VoiceAsset is a recorded, uploaded or generated voice. AssetHandle points
// at the audio payload in the blob store.
type VoiceAsset struct {
	ID          int64
	OwnerID     int64
	Name        string
	Kind        VoiceKind
	AssetHandle string
	CreatedAt   time.Time
	Published   bool
}

// EmotionMark annotates the span [StartOffset, EndOffset) of a voice, in
// seconds.
type EmotionMark struct {
	ID          int64
	VoiceID     int64
	Label       string
	StartOffset float64
	EndOffset   float64
	Intensity   int
	CreatedAt   time.Time
}

type MarketplaceListing struct {
	ID          int64
	VoiceID     int64
	SellerID    int64
	Price       float64
	Description string
	CreatedAt   time.Time
}

// ListingWithVoice joins a listing with its voice. Voice is nil when the
// voice has been deleted since publishing.
type ListingWithVoice struct {
	Listing MarketplaceListing
	Voice   *VoiceAsset
}

// Package model defines domain entities shared by stores and workflows.
package model

import (
	"time"
)

// ActorID is the numeric identity of a chat participant.
type ActorID int64

// Address is a 0x-prefixed 40-hex-character account address.
type Address string

// Capability is a named permission an actor may hold.
type Capability string

// Capabilities understood by the permission registry. Admin implies all others.
const (
	CapCreate     Capability = "create"
	CapMint       Capability = "mint"
	CapMintAny    Capability = "mint_any"
	CapViewLogs   Capability = "view_logs"
	CapViewTokens Capability = "view_tokens"
	CapAdmin      Capability = "admin"
)

// KnownCapability reports whether c is one of the defined capability tags.
func KnownCapability(c Capability) bool {
	switch c {
	case CapCreate, CapMint, CapMintAny, CapViewLogs, CapViewTokens, CapAdmin:
		return true
	}
	return false
}

// Actor is a directory record for a chat participant.
type Actor struct {
	ID        ActorID   `json:"id"`
	Handle    string    `json:"handle,omitempty"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	AddedAt   time.Time `json:"added_at"`
}

// CreationField names one step of the creation wizard.
type CreationField string

// Fields of a pending creation, filled strictly in this order.
const (
	FieldImage       CreationField = "image"
	FieldName        CreationField = "name"
	FieldDescription CreationField = "description"
)

// CreationState is the wizard position derived from a pending creation record.
type CreationState string

// Wizard states. None means no pending record exists for the actor.
const (
	StateNone                 CreationState = "none"
	StateAwaitingImage        CreationState = "awaiting_image"
	StateAwaitingName         CreationState = "awaiting_name"
	StateAwaitingDescription  CreationState = "awaiting_description"
	StateAwaitingConfirmation CreationState = "awaiting_confirmation"
)

// PendingCreation is the in-memory partial state of one actor's creation wizard.
type PendingCreation struct {
	Image        []byte
	ImageName    string // original filename, for the pin request
	Name         string
	Description  string
	PreviewMsgID int // message carrying the confirm/cancel buttons, 0 if none
}

// State reports the wizard position implied by which fields are filled.
func (p *PendingCreation) State() CreationState {
	switch {
	case p == nil:
		return StateNone
	case len(p.Image) == 0:
		return StateAwaitingImage
	case p.Name == "":
		return StateAwaitingName
	case p.Description == "":
		return StateAwaitingDescription
	default:
		return StateAwaitingConfirmation
	}
}

// MintRequest is a pending mint awaiting its confirmation button click.
type MintRequest struct {
	Initiator        ActorID
	RecipientInput   string // what the actor typed (address or name)
	ResolvedAddress  Address
	TokenID          int64
	CorrelationToken string
	ChatID           int64
}

// TokenMetadata is the object pinned for a token and fetched back for display.
type TokenMetadata struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"` // ipfs:// content address
}

// ActionKind classifies audit entries.
type ActionKind string

// Audited action kinds.
const (
	ActionCreate ActionKind = "create"
	ActionMint   ActionKind = "mint"
	ActionAdmin  ActionKind = "admin"
	ActionPoints ActionKind = "points"
)

// ChatContext records where an audited action happened.
type ChatContext struct {
	ChatID    int64  `json:"chat_id"`
	ChatTitle string `json:"chat_title,omitempty"`
	Message   string `json:"message,omitempty"`
}

// TokenEvent is the audit metadata for create and mint actions.
type TokenEvent struct {
	TokenID   int64          `json:"token_id"`
	TxRef     string         `json:"tx_ref,omitempty"`
	Recipient Address        `json:"recipient,omitempty"`
	Metadata  *TokenMetadata `json:"metadata,omitempty"`
}

// AdminEvent is the audit metadata for admin actions.
type AdminEvent struct {
	TargetHandle string     `json:"target_handle"`
	TargetID     ActorID    `json:"target_id"`
	Role         Capability `json:"role,omitempty"`
}

// PointsEvent is the audit metadata for points assignments.
type PointsEvent struct {
	TokenID int64 `json:"token_id"`
	Points  int64 `json:"points"`
}

// AuditEntry is one immutable record in the append-only trail.
type AuditEntry struct {
	ID          string       `json:"id"` // ULID, time-ordered
	Timestamp   time.Time    `json:"timestamp"`
	Action      ActionKind   `json:"action"`
	ActorID     ActorID      `json:"actor_id"`
	ActorHandle string       `json:"actor_handle,omitempty"`
	Chat        ChatContext  `json:"chat"`
	Token       *TokenEvent  `json:"token,omitempty"`
	Admin       *AdminEvent  `json:"admin,omitempty"`
	Points      *PointsEvent `json:"points,omitempty"`
}

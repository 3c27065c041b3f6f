// Package session holds in-memory conversation state for multi-step flows.
// Records live until confirmed, cancelled, or superseded; they do not survive
// a process restart.
package session

import (
	"fmt"
	"sync"

	"github.com/kobuta23/telegram-minter/internal/errs"
	"github.com/kobuta23/telegram-minter/internal/model"
)

// Store keeps per-actor pending creations and correlation-token-keyed pending
// mint requests. All operations are serialized under one mutex, so a record
// can be consumed at most once even when two handler bodies interleave.
type Store struct {
	mu        sync.Mutex
	creations map[model.ActorID]*model.PendingCreation
	mints     map[string]model.MintRequest
}

// NewStore returns an empty session store.
func NewStore() *Store {
	return &Store{
		creations: make(map[model.ActorID]*model.PendingCreation),
		mints:     make(map[string]model.MintRequest),
	}
}

// BeginCreation starts (or unconditionally restarts) the creation wizard for
// the actor. Supersession confirmation is the caller's concern.
func (s *Store) BeginCreation(actor model.ActorID) *model.PendingCreation {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &model.PendingCreation{}
	s.creations[actor] = p
	return p
}

// CreationState reports the wizard position for the actor.
func (s *Store) CreationState(actor model.ActorID) model.CreationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creations[actor].State()
}

// AdvanceCreation fills the next wizard field. It fails without mutating
// state when no record exists or when the field is supplied out of order;
// the workflow layer decides how to surface the signal.
func (s *Store) AdvanceCreation(actor model.ActorID, field model.CreationField, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.creations[actor]
	if !ok {
		return errs.ErrExpired
	}
	expected := nextField(p)
	if expected == "" || field != expected {
		return fmt.Errorf("%w: field %s out of order (want %s)", errs.ErrValidation, field, expected)
	}
	switch field {
	case model.FieldImage:
		p.Image = append([]byte(nil), value...)
	case model.FieldName:
		p.Name = string(value)
	case model.FieldDescription:
		p.Description = string(value)
	}
	return nil
}

// nextField returns the field the wizard expects next, or "" when the record
// is already complete.
func nextField(p *model.PendingCreation) model.CreationField {
	switch p.State() {
	case model.StateAwaitingImage:
		return model.FieldImage
	case model.StateAwaitingName:
		return model.FieldName
	case model.StateAwaitingDescription:
		return model.FieldDescription
	default:
		return ""
	}
}

// SetCreationImageName records the original filename alongside the image.
func (s *Store) SetCreationImageName(actor model.ActorID, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.creations[actor]; ok {
		p.ImageName = name
	}
}

// SetCreationPreview records the message id carrying the confirm buttons.
func (s *Store) SetCreationPreview(actor model.ActorID, msgID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.creations[actor]; ok {
		p.PreviewMsgID = msgID
	}
}

// PeekCreation returns a copy of the actor's pending record without
// consuming it.
func (s *Store) PeekCreation(actor model.ActorID) (model.PendingCreation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.creations[actor]
	if !ok {
		return model.PendingCreation{}, false
	}
	return *p, true
}

// CompleteCreation returns the finished record and clears it. A second caller
// racing the first observes ErrExpired, never a re-execution.
func (s *Store) CompleteCreation(actor model.ActorID) (*model.PendingCreation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.creations[actor]
	if !ok {
		return nil, errs.ErrExpired
	}
	if p.State() != model.StateAwaitingConfirmation {
		return nil, fmt.Errorf("%w: creation incomplete at %s", errs.ErrValidation, p.State())
	}
	delete(s.creations, actor)
	return p, nil
}

// CancelCreation drops the actor's pending creation, if any.
func (s *Store) CancelCreation(actor model.ActorID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.creations, actor)
}

// OpenMintConfirmation registers a pending mint under its correlation token.
func (s *Store) OpenMintConfirmation(token string, req model.MintRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mints[token] = req
}

// TakeMintConfirmation consumes the pending mint for the token. At most one
// take succeeds per token; later takes observe ErrExpired.
func (s *Store) TakeMintConfirmation(token string) (model.MintRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.mints[token]
	if !ok {
		return model.MintRequest{}, errs.ErrExpired
	}
	delete(s.mints, token)
	return req, nil
}

// DropMintConfirmation discards the pending mint for the token, if any.
func (s *Store) DropMintConfirmation(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.mints, token)
}

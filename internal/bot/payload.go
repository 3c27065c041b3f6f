package bot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kobuta23/telegram-minter/internal/model"
)

// Button payloads travel as delimiter-joined strings:
//
//	<action>_<domain>_<initiatorActorId>_<...params>
//
// e.g. "confirm_mint_123_9b2f...". The parser splits positionally and decodes
// into one tagged variant per shape; unknown shapes are rejected, never
// indexed blindly. Correlation tokens are UUIDs and so never contain the
// delimiter.

// Payload is a decoded button click.
type Payload interface {
	payloadInitiator() model.ActorID
}

// CreateConfirm confirms a pending creation.
type CreateConfirm struct{ Initiator model.ActorID }

// CreateCancel cancels a pending creation.
type CreateCancel struct{ Initiator model.ActorID }

// CreateReplace restarts the wizard, superseding the actor's existing token.
type CreateReplace struct{ Initiator model.ActorID }

// CreateKeep keeps the actor's existing token and aborts the restart.
type CreateKeep struct{ Initiator model.ActorID }

// MintConfirm confirms the pending mint bound to the correlation token.
type MintConfirm struct {
	Initiator        model.ActorID
	CorrelationToken string
}

// MintCancel drops the pending mint bound to the correlation token.
type MintCancel struct {
	Initiator        model.ActorID
	CorrelationToken string
}

// PointsConfirm confirms a points assignment to token holders.
type PointsConfirm struct {
	Initiator model.ActorID
	TokenID   int64
	Points    int64
}

// PointsCancel aborts a points assignment.
type PointsCancel struct{ Initiator model.ActorID }

// LogsMore expands the audit log view to the given limit.
type LogsMore struct {
	Initiator model.ActorID
	Limit     int
}

// TokensAll lists every token on chain.
type TokensAll struct{ Initiator model.ActorID }

func (p CreateConfirm) payloadInitiator() model.ActorID { return p.Initiator }
func (p CreateCancel) payloadInitiator() model.ActorID  { return p.Initiator }
func (p CreateReplace) payloadInitiator() model.ActorID { return p.Initiator }
func (p CreateKeep) payloadInitiator() model.ActorID    { return p.Initiator }
func (p MintConfirm) payloadInitiator() model.ActorID   { return p.Initiator }
func (p MintCancel) payloadInitiator() model.ActorID    { return p.Initiator }
func (p PointsConfirm) payloadInitiator() model.ActorID { return p.Initiator }
func (p PointsCancel) payloadInitiator() model.ActorID  { return p.Initiator }
func (p LogsMore) payloadInitiator() model.ActorID      { return p.Initiator }
func (p TokensAll) payloadInitiator() model.ActorID     { return p.Initiator }

// Encode renders the wire form of each payload variant.

func (p CreateConfirm) Encode() string { return encode("confirm", "create", p.Initiator) }
func (p CreateCancel) Encode() string  { return encode("cancel", "create", p.Initiator) }
func (p CreateReplace) Encode() string { return encode("replace", "create", p.Initiator) }
func (p CreateKeep) Encode() string    { return encode("keep", "create", p.Initiator) }
func (p MintConfirm) Encode() string {
	return encode("confirm", "mint", p.Initiator, p.CorrelationToken)
}
func (p MintCancel) Encode() string {
	return encode("cancel", "mint", p.Initiator, p.CorrelationToken)
}
func (p PointsConfirm) Encode() string {
	return encode("confirm", "points", p.Initiator, strconv.FormatInt(p.TokenID, 10), strconv.FormatInt(p.Points, 10))
}
func (p PointsCancel) Encode() string { return encode("cancel", "points", p.Initiator) }
func (p LogsMore) Encode() string {
	return encode("more", "logs", p.Initiator, strconv.Itoa(p.Limit))
}
func (p TokensAll) Encode() string { return encode("all", "tokens", p.Initiator) }

func encode(action, domain string, initiator model.ActorID, params ...string) string {
	parts := append([]string{action, domain, strconv.FormatInt(int64(initiator), 10)}, params...)
	return strings.Join(parts, "_")
}

// ParsePayload decodes a callback-data string into its tagged variant.
func ParsePayload(data string) (Payload, error) {
	parts := strings.Split(data, "_")
	if len(parts) < 3 {
		return nil, fmt.Errorf("payload %q: too few segments", data)
	}
	action, domain := parts[0], parts[1]
	initiator, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("payload %q: bad initiator: %v", data, err)
	}
	actor := model.ActorID(initiator)
	params := parts[3:]

	switch domain + "/" + action {
	case "create/confirm":
		return CreateConfirm{Initiator: actor}, expectParams(data, params, 0)
	case "create/cancel":
		return CreateCancel{Initiator: actor}, expectParams(data, params, 0)
	case "create/replace":
		return CreateReplace{Initiator: actor}, expectParams(data, params, 0)
	case "create/keep":
		return CreateKeep{Initiator: actor}, expectParams(data, params, 0)
	case "mint/confirm":
		if err := expectParams(data, params, 1); err != nil {
			return nil, err
		}
		return MintConfirm{Initiator: actor, CorrelationToken: params[0]}, nil
	case "mint/cancel":
		if err := expectParams(data, params, 1); err != nil {
			return nil, err
		}
		return MintCancel{Initiator: actor, CorrelationToken: params[0]}, nil
	case "points/confirm":
		if err := expectParams(data, params, 2); err != nil {
			return nil, err
		}
		tokenID, err := strconv.ParseInt(params[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("payload %q: bad token id: %v", data, err)
		}
		points, err := strconv.ParseInt(params[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("payload %q: bad points: %v", data, err)
		}
		return PointsConfirm{Initiator: actor, TokenID: tokenID, Points: points}, nil
	case "points/cancel":
		return PointsCancel{Initiator: actor}, expectParams(data, params, 0)
	case "logs/more":
		if err := expectParams(data, params, 1); err != nil {
			return nil, err
		}
		limit, err := strconv.Atoi(params[0])
		if err != nil {
			return nil, fmt.Errorf("payload %q: bad limit: %v", data, err)
		}
		return LogsMore{Initiator: actor, Limit: limit}, nil
	case "tokens/all":
		return TokensAll{Initiator: actor}, expectParams(data, params, 0)
	default:
		return nil, fmt.Errorf("payload %q: unknown shape %s/%s", data, domain, action)
	}
}

func expectParams(data string, params []string, n int) error {
	if len(params) != n {
		return fmt.Errorf("payload %q: want %d params, got %d", data, n, len(params))
	}
	return nil
}

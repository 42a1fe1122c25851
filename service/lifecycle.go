package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Khalil2008k/guild-contracts/model"
)

// transitions enumerates the ordinary forward edges of the contract state
// machine. The terminal overrides (completed, terminated, disputed) are
// reachable from any status for support and dispute handling, and active is
// reachable only through the dual-signature gate in ApplySignature.
var transitions = map[string][]string{
	model.StatusDraft:             {model.StatusPendingSignatures},
	model.StatusPendingSignatures: {},
	model.StatusActive:            {},
}

// CanTransition reports whether a direct status update from one status to
// another is legal. Activation is never legal here: a contract becomes active
// only when the second signature lands.
func CanTransition(from, to string) bool {
	if from == to {
		return false
	}
	if to == model.StatusActive {
		return false
	}
	if model.IsTerminal(to) {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// applyStatus mutates a contract in place for a direct status update. Both
// store implementations call it inside their atomic section so the legality
// check and the write cannot be separated.
func applyStatus(c *model.Contract, newStatus, actorID string, now time.Time) error {
	if !model.IsValidStatus(newStatus) {
		return fmt.Errorf("%w: unknown status %q", model.ErrValidation, newStatus)
	}
	if !CanTransition(c.Status, newStatus) {
		return fmt.Errorf("%w: %s -> %s", model.ErrInvalidTransition, c.Status, newStatus)
	}
	c.Events = append(c.Events, model.StatusEvent{
		From:    c.Status,
		To:      newStatus,
		ActorID: actorID,
		At:      now,
	})
	c.Status = newStatus
	c.UpdatedAt = now
	if newStatus == model.StatusCompleted {
		t := now
		c.CompletedAt = &t
	}
	return nil
}

// applySignature mutates a contract in place for one party's signature and,
// when the counterparty has already signed, performs the activation in the
// same step. Both store implementations call it inside their atomic section,
// which is what keeps two concurrent signers from leaving the contract stuck
// in pending_signatures.
func applySignature(c *model.Contract, role, callerID string, sig model.Signature, now time.Time) error {
	party := c.PartyByRole(role)
	if party == nil {
		return fmt.Errorf("%w: unknown signing role %q", model.ErrValidation, role)
	}
	if party.UserID != callerID {
		return fmt.Errorf("%w: cannot sign as %s", model.ErrUnauthorized, role)
	}
	if c.Status != model.StatusPendingSignatures {
		return fmt.Errorf("%w: cannot sign in status %s", model.ErrInvalidTransition, c.Status)
	}
	if party.Signed() {
		return fmt.Errorf("%w: %s already signed", model.ErrInvalidTransition, role)
	}

	s := sig
	party.Signature = &s
	party.AcceptedTerms = true
	c.UpdatedAt = now

	other := c.Poster
	if role == model.RolePoster {
		other = c.Doer
	}
	if other.Signed() {
		c.Events = append(c.Events, model.StatusEvent{
			From:    c.Status,
			To:      model.StatusActive,
			ActorID: callerID,
			At:      now,
		})
		c.Status = model.StatusActive
		t := now
		c.ActivatedAt = &t
	}
	return nil
}

// LifecycleController drives contract state changes on top of a ContractStore.
// It owns the guards (who may act) while the stores own atomicity.
type LifecycleController struct {
	store  ContractStore
	signer *SignatureEngine
	rules  *PlatformRuleSet
}

func NewLifecycleController(store ContractStore, signer *SignatureEngine, rules *PlatformRuleSet) *LifecycleController {
	return &LifecycleController{
		store:  store,
		signer: signer,
		rules:  rules,
	}
}

// CreateDraft snapshots the platform rule set into the contract and persists
// it in draft status. The caller must be the contract's poster.
func (l *LifecycleController) CreateDraft(ctx context.Context, c *model.Contract, callerID string) (*model.Contract, error) {
	if c.Poster.UserID != callerID {
		return nil, fmt.Errorf("%w: only the poster can create a contract", model.ErrUnauthorized)
	}
	c.PlatformRules = l.rules.Snapshot()
	c.RulesVersion = l.rules.Version
	c.Version = model.SchemaVersion
	if c.Language == "" {
		c.Language = model.LangEnglish
	}
	return l.store.Create(ctx, c)
}

// RequestSignatures moves a fully populated draft to pending_signatures.
func (l *LifecycleController) RequestSignatures(ctx context.Context, id, callerID string) (*model.Contract, error) {
	c, err := l.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.IsParty(callerID) {
		return nil, fmt.Errorf("%w: not a contract party", model.ErrUnauthorized)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := l.store.UpdateStatus(ctx, id, model.StatusPendingSignatures, callerID); err != nil {
		return nil, err
	}
	return l.store.Get(ctx, id)
}

// Sign derives the caller's signing role, produces a signature token for that
// party's GID, and applies it through the store's atomic signature path.
func (l *LifecycleController) Sign(ctx context.Context, id, callerID, ipAddress string) (*model.Contract, error) {
	c, err := l.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	role, ok := c.RoleOf(callerID)
	if !ok {
		return nil, fmt.Errorf("%w: not a contract party", model.ErrUnauthorized)
	}
	sig := l.signer.Sign(c.PartyByRole(role).GID)
	sig.IPAddress = ipAddress
	return l.store.ApplySignature(ctx, id, role, callerID, sig)
}

// UpdateStatus performs a direct status change. Terminal overrides are open
// to parties and admins; everything else follows the transition table.
func (l *LifecycleController) UpdateStatus(ctx context.Context, id, newStatus, actorID string, admin bool) (*model.Contract, error) {
	c, err := l.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !admin && !c.IsParty(actorID) {
		return nil, fmt.Errorf("%w: not a contract party", model.ErrUnauthorized)
	}
	if err := l.store.UpdateStatus(ctx, id, newStatus, actorID); err != nil {
		return nil, err
	}
	return l.store.Get(ctx, id)
}

// Complete marks an active contract as completed.
func (l *LifecycleController) Complete(ctx context.Context, id, actorID string, admin bool) (*model.Contract, error) {
	return l.UpdateStatus(ctx, id, model.StatusCompleted, actorID, admin)
}

// Terminate administratively ends a contract.
func (l *LifecycleController) Terminate(ctx context.Context, id, actorID string, admin bool) (*model.Contract, error) {
	return l.UpdateStatus(ctx, id, model.StatusTerminated, actorID, admin)
}

// Dispute flags a contract for dispute handling.
func (l *LifecycleController) Dispute(ctx context.Context, id, actorID string, admin bool) (*model.Contract, error) {
	return l.UpdateStatus(ctx, id, model.StatusDisputed, actorID, admin)
}

// VerifySignatures recomputes both parties' signature tokens from their GIDs
// and the persisted signing timestamps.
func (l *LifecycleController) VerifySignatures(ctx context.Context, id string) (map[string]bool, error) {
	c, err := l.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return map[string]bool{
		model.RolePoster: l.signer.VerifyRecord(&c.Poster),
		model.RoleDoer:   l.signer.VerifyRecord(&c.Doer),
	}, nil
}

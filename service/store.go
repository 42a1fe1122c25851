package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Khalil2008k/guild-contracts/model"
	"github.com/google/uuid"
)

// ContractStore is the persistence boundary for contracts. Implementations
// must make UpdateStatus and ApplySignature atomic per document: the
// dual-signature activation check and the status write happen in one step.
type ContractStore interface {
	Create(ctx context.Context, c *model.Contract) (*model.Contract, error)
	Get(ctx context.Context, id string) (*model.Contract, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Contract, error)
	GetByJob(ctx context.Context, jobID string) (*model.Contract, error)
	UpdateStatus(ctx context.Context, id, newStatus, actorID string) error
	ApplySignature(ctx context.Context, id, role, callerID string, sig model.Signature) (*model.Contract, error)
}

// MemoryStore keeps contracts in memory behind a mutex. It backs dev mode and
// tests; production uses PostgresStore.
type MemoryStore struct {
	mu        sync.RWMutex
	contracts map[string]*model.Contract
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{contracts: make(map[string]*model.Contract)}
}

func (s *MemoryStore) Create(ctx context.Context, c *model.Contract) (*model.Contract, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.contracts {
		if existing.JobID == c.JobID && !model.IsTerminal(existing.Status) {
			return nil, fmt.Errorf("%w: job %s already has a live contract", model.ErrValidation, c.JobID)
		}
	}

	now := time.Now().UTC()
	stored := c.Clone()
	stored.ID = uuid.New().String()
	stored.Status = model.StatusDraft
	stored.CreatedAt = now
	stored.UpdatedAt = now

	s.contracts[stored.ID] = stored
	return stored.Clone(), nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*model.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.contracts[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return c.Clone(), nil
}

func (s *MemoryStore) ListByUser(ctx context.Context, userID string) ([]*model.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	var result []*model.Contract
	for _, c := range s.contracts {
		if !c.IsParty(userID) || seen[c.ID] {
			continue
		}
		seen[c.ID] = true
		result = append(result, c.Clone())
	}

	// Newest first
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *MemoryStore) GetByJob(ctx context.Context, jobID string) (*model.Contract, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var newest *model.Contract
	for _, c := range s.contracts {
		if c.JobID != jobID {
			continue
		}
		if newest == nil || c.CreatedAt.After(newest.CreatedAt) {
			newest = c
		}
	}
	if newest == nil {
		return nil, model.ErrNotFound
	}
	return newest.Clone(), nil
}

func (s *MemoryStore) UpdateStatus(ctx context.Context, id, newStatus, actorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contracts[id]
	if !ok {
		return model.ErrNotFound
	}
	return applyStatus(c, newStatus, actorID, time.Now().UTC())
}

func (s *MemoryStore) ApplySignature(ctx context.Context, id, role, callerID string, sig model.Signature) (*model.Contract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contracts[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	if err := applySignature(c, role, callerID, sig, time.Now().UTC()); err != nil {
		return nil, err
	}
	return c.Clone(), nil
}

// Package bank owns the client-side bank list and bank creation. Balances
// are entered in minor units and cross the wire as major-unit decimals via
// core.Money.
package bank

import (
	"context"
	"fmt"
	"sync"

	"lifeassistant/internal/api"
	"lifeassistant/internal/core"
	"lifeassistant/internal/log"
	"lifeassistant/internal/session"
)

type Store struct {
	client  *api.Client
	session *session.Session
	logger  *log.Logger

	mu    sync.RWMutex
	banks []core.Bank
	seq   uint64

	onChange func()
}

func NewStore(client *api.Client, sess *session.Session, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Store{
		client:  client,
		session: sess,
		logger:  logger.WithComponent(log.ComponentBank),
	}
}

// SetOnChange registers a callback fired after every applied state change.
func (s *Store) SetOnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Banks returns a copy of the published bank list.
func (s *Store) Banks() []core.Bank {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Bank(nil), s.banks...)
}

// FetchUserBanks refreshes the bank list for the signed-in user.
func (s *Store) FetchUserBanks(ctx context.Context) error {
	userID, ok := s.session.CurrentIdentity()
	if !ok {
		return session.ErrNotAuthenticated
	}

	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	resp, err := s.client.ListBanks(ctx, userID)
	if err != nil {
		return err
	}
	if err := resp.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		s.logger.DebugContext(ctx, "Discarded stale bank fetch")
		return nil
	}
	s.banks = resp.Banks
	s.mu.Unlock()

	s.notify()
	return nil
}

// CreateBank submits a new bank. The current identity is stamped as owner
// before submission; on backend-confirmed success the full list is
// refetched. Any failure leaves local state untouched.
func (s *Store) CreateBank(ctx context.Context, req core.BankRequest) error {
	userID, ok := s.session.CurrentIdentity()
	if !ok {
		return session.ErrNotAuthenticated
	}
	req.UserID = userID

	if err := req.Validate(); err != nil {
		return fmt.Errorf("validate bank: %w", err)
	}

	resp, err := s.client.CreateBank(ctx, req)
	if err != nil {
		return err
	}
	if err := resp.Err(); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Bank created",
		log.FieldOperation, log.OpCreate,
		log.FieldBankID, resp.Bank.ID,
		log.FieldAmountCents, req.Balance.Cents)

	if err := s.FetchUserBanks(ctx); err != nil {
		s.logger.WarnContext(ctx, "Resync after create failed", log.FieldError, err.Error())
	}
	return nil
}

// DeleteBank splices a bank out of the published list by identifier and
// reports whether it was present. The backend exposes no bank-deletion
// endpoint; removal is local-only until the next fetch, matching the
// original product behavior, but lives here rather than in the consuming
// view so every list mutation goes through the store.
func (s *Store) DeleteBank(id string) bool {
	s.mu.Lock()
	kept := s.banks[:0:0]
	removed := false
	for _, b := range s.banks {
		if b.ID == id {
			removed = true
			continue
		}
		kept = append(kept, b)
	}
	s.banks = kept
	s.mu.Unlock()

	if removed {
		s.logger.Info("Bank removed from list",
			log.FieldOperation, log.OpDelete,
			log.FieldBankID, id)
		s.notify()
	}
	return removed
}

func (s *Store) notify() {
	s.mu.RLock()
	fn := s.onChange
	s.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// Package finance owns the client-side finance state: the transaction list
// for the active month/year window, the bank list, and the server-computed
// withdraw summary. Mutations are optimistic where the backend response is
// authoritative enough to patch locally, and resynchronize with a full
// refetch where a single change can ripple across aggregates.
package finance

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"lifeassistant/internal/api"
	"lifeassistant/internal/cache"
	"lifeassistant/internal/core"
	"lifeassistant/internal/log"
	"lifeassistant/internal/session"
	"lifeassistant/internal/storage"
)

// ErrMissingTransactionID is returned by mutations that need a
// server-assigned identifier.
var ErrMissingTransactionID = errors.New("transaction id required")

// Store is safe for concurrent use. Published collections follow a
// single-writer discipline: only request-completion paths write, and every
// completion is applied under the store lock so readers observe whole
// states, never partial mutations. Completion callbacks fire outside the
// lock; an embedding UI dispatches them onto its own thread.
type Store struct {
	client    *api.Client
	session   *session.Session
	snapshots *storage.SnapshotRepository // optional; nil disables offline snapshots
	logger    *log.Logger

	summaryCache *cache.TTL[core.WithdrawSummary]

	mu           sync.RWMutex
	transactions []core.Transaction
	banks        []core.Bank
	summary      core.WithdrawSummary
	hasSummary   bool
	month, year  int

	// Per-field fetch sequence numbers. A completion applies only when no
	// newer fetch for the same field started meanwhile, so a stale response
	// for a window the user navigated away from cannot overwrite newer state.
	txSeq, bankSeq, summarySeq uint64

	onChange func()
}

func NewStore(client *api.Client, sess *session.Session, snapshots *storage.SnapshotRepository, logger *log.Logger, summaryTTL time.Duration) *Store {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Store{
		client:       client,
		session:      sess,
		snapshots:    snapshots,
		logger:       logger.WithComponent(log.ComponentFinance),
		summaryCache: cache.NewTTL[core.WithdrawSummary](32, summaryTTL),
	}
}

// SetOnChange registers a callback fired after every applied state change.
func (s *Store) SetOnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Transactions returns a copy of the published transaction list.
func (s *Store) Transactions() []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Transaction(nil), s.transactions...)
}

// Banks returns a copy of the published bank list.
func (s *Store) Banks() []core.Bank {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Bank(nil), s.banks...)
}

// Summary returns the published withdraw summary and whether one has been
// fetched for the active window yet.
func (s *Store) Summary() (core.WithdrawSummary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summary, s.hasSummary
}

// Window returns the active month/year; zeroes mean the backend default.
func (s *Store) Window() (month, year int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.month, s.year
}

// FetchAll refreshes the withdraw summary, the transaction list and the bank
// list for the given window. The three fetches run concurrently with no
// ordering dependency; each updates only its own published field, so one
// failing does not block the others. The first error is returned once all
// three complete.
func (s *Store) FetchAll(ctx context.Context, month, year int) error {
	userID, ok := s.session.CurrentIdentity()
	if !ok {
		return session.ErrNotAuthenticated
	}

	s.mu.Lock()
	s.month, s.year = month, year
	s.mu.Unlock()

	var g errgroup.Group
	g.Go(func() error { return s.fetchWithdraw(ctx, userID, month, year) })
	g.Go(func() error { return s.fetchTransactions(ctx, userID, month, year, 0) })
	g.Go(func() error { return s.fetchBanks(ctx, userID) })
	return g.Wait()
}

// FetchTransactions refreshes only the transaction list. Zero month/year
// means the backend's default window; zero limit means no server-side cap.
func (s *Store) FetchTransactions(ctx context.Context, month, year, limit int) error {
	userID, ok := s.session.CurrentIdentity()
	if !ok {
		return session.ErrNotAuthenticated
	}
	return s.fetchTransactions(ctx, userID, month, year, limit)
}

// FetchUserBanks refreshes only the bank list.
func (s *Store) FetchUserBanks(ctx context.Context) error {
	userID, ok := s.session.CurrentIdentity()
	if !ok {
		return session.ErrNotAuthenticated
	}
	return s.fetchBanks(ctx, userID)
}

// FetchWithdraw refreshes only the withdraw summary.
func (s *Store) FetchWithdraw(ctx context.Context, month, year int) error {
	userID, ok := s.session.CurrentIdentity()
	if !ok {
		return session.ErrNotAuthenticated
	}
	return s.fetchWithdraw(ctx, userID, month, year)
}

// PostTransaction submits a new transaction. The user reference is stamped
// from the live session. On backend-confirmed success the store resyncs all
// three aggregates, since a new transaction can change the summary, the
// list, and bank balances. Any failure leaves local state untouched.
func (s *Store) PostTransaction(ctx context.Context, t core.Transaction) error {
	userID, ok := s.session.CurrentIdentity()
	if !ok {
		return session.ErrNotAuthenticated
	}
	t.UserID = userID

	if err := t.Validate(); err != nil {
		return fmt.Errorf("validate transaction: %w", err)
	}

	resp, err := s.client.CreateTransaction(ctx, t)
	if err != nil {
		return err
	}
	if err := resp.Err(); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Transaction created",
		log.FieldOperation, log.OpCreate,
		log.FieldKind, t.Kind,
		log.FieldAmountCents, t.Value.Cents)

	s.summaryCache.Purge()
	month, year := s.Window()
	if err := s.FetchAll(ctx, month, year); err != nil {
		// The mutation itself succeeded; the next fetch reconverges.
		s.logger.WarnContext(ctx, "Resync after create failed", log.FieldError, err.Error())
	}
	return nil
}

// DeleteTransaction deletes by identifier. On backend-confirmed success the
// matching transaction is removed from the published list, keyed strictly by
// identifier. On failure the list is unchanged.
func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	if id == "" {
		return ErrMissingTransactionID
	}

	resp, err := s.client.DeleteTransaction(ctx, id)
	if err != nil {
		return err
	}
	if err := resp.Err(); err != nil {
		return err
	}

	s.summaryCache.Purge()

	s.mu.Lock()
	kept := s.transactions[:0:0]
	for _, t := range s.transactions {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	s.transactions = kept
	snapshot := append([]core.Transaction(nil), kept...)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Transaction deleted",
		log.FieldOperation, log.OpDelete,
		log.FieldTransactionID, id)

	if userID, ok := s.session.CurrentIdentity(); ok {
		s.persistTransactions(ctx, userID, snapshot)
	}
	s.notify()
	return nil
}

// ConfirmPay marks the transaction paid via a partial update. On success the
// matching published transaction is patched in place by identifier; nothing
// is refetched and no other entry is altered.
func (s *Store) ConfirmPay(ctx context.Context, id string) error {
	if id == "" {
		return ErrMissingTransactionID
	}

	resp, err := s.client.ConfirmPay(ctx, id)
	if err != nil {
		return err
	}
	if err := resp.Err(); err != nil {
		return err
	}

	s.summaryCache.Purge()

	s.mu.Lock()
	for i := range s.transactions {
		if s.transactions[i].ID == id {
			s.transactions[i].IsPaid = true
			break
		}
	}
	snapshot := append([]core.Transaction(nil), s.transactions...)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Transaction paid",
		log.FieldOperation, log.OpConfirmPay,
		log.FieldTransactionID, id)

	if userID, ok := s.session.CurrentIdentity(); ok {
		s.persistTransactions(ctx, userID, snapshot)
	}
	s.notify()
	return nil
}

// LoadSnapshot hydrates the published transaction and bank lists from the
// offline snapshot store, for rendering before the first fetch or when the
// backend is unreachable. The summary is server-computed and never restored.
func (s *Store) LoadSnapshot(ctx context.Context) error {
	if s.snapshots == nil {
		return nil
	}
	userID, ok := s.session.CurrentIdentity()
	if !ok {
		return session.ErrNotAuthenticated
	}

	ts, err := s.snapshots.ListTransactions(ctx, userID)
	if err != nil {
		return fmt.Errorf("load transaction snapshot: %w", err)
	}
	banks, err := s.snapshots.ListBanks(ctx, userID)
	if err != nil {
		return fmt.Errorf("load bank snapshot: %w", err)
	}

	s.mu.Lock()
	s.transactions = ts
	s.banks = banks
	s.mu.Unlock()

	s.notify()
	return nil
}

func (s *Store) fetchTransactions(ctx context.Context, userID string, month, year, limit int) error {
	s.mu.Lock()
	s.txSeq++
	seq := s.txSeq
	s.mu.Unlock()

	resp, err := s.client.ListTransactions(ctx, userID, month, year, limit)
	if err != nil {
		return err
	}
	if err := resp.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	if seq != s.txSeq {
		s.mu.Unlock()
		s.logger.DebugContext(ctx, "Discarded stale transaction fetch",
			log.FieldMonth, month, log.FieldYear, year)
		return nil
	}
	s.transactions = resp.Transactions
	s.mu.Unlock()

	s.persistTransactions(ctx, userID, resp.Transactions)
	s.notify()
	return nil
}

func (s *Store) fetchBanks(ctx context.Context, userID string) error {
	s.mu.Lock()
	s.bankSeq++
	seq := s.bankSeq
	s.mu.Unlock()

	resp, err := s.client.ListBanks(ctx, userID)
	if err != nil {
		return err
	}
	if err := resp.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	if seq != s.bankSeq {
		s.mu.Unlock()
		s.logger.DebugContext(ctx, "Discarded stale bank fetch")
		return nil
	}
	s.banks = resp.Banks
	s.mu.Unlock()

	if s.snapshots != nil {
		if err := s.snapshots.SaveBanks(ctx, userID, resp.Banks); err != nil {
			s.logger.WarnContext(ctx, "Bank snapshot save failed", log.FieldError, err.Error())
		}
	}
	s.notify()
	return nil
}

func (s *Store) fetchWithdraw(ctx context.Context, userID string, month, year int) error {
	key := summaryKey(userID, month, year)
	if cached, ok := s.summaryCache.Get(key); ok {
		// A cache hit is the newest completion for this field: bump the
		// sequence so any fetch still in flight for an older window is
		// discarded when it lands.
		s.mu.Lock()
		s.summarySeq++
		s.summary = cached
		s.hasSummary = true
		s.mu.Unlock()
		s.notify()
		return nil
	}

	s.mu.Lock()
	s.summarySeq++
	seq := s.summarySeq
	s.mu.Unlock()

	resp, err := s.client.FetchWithdraw(ctx, userID, month, year)
	if err != nil {
		return err
	}
	if err := resp.Err(); err != nil {
		return err
	}

	s.summaryCache.Set(key, resp.WithdrawSummary)
	if !s.applySummary(seq, resp.WithdrawSummary) {
		s.logger.DebugContext(ctx, "Discarded stale withdraw fetch",
			log.FieldMonth, month, log.FieldYear, year)
	}
	return nil
}

// applySummary publishes a summary under the stale-fetch guard.
func (s *Store) applySummary(seq uint64, summary core.WithdrawSummary) bool {
	s.mu.Lock()
	if seq != s.summarySeq {
		s.mu.Unlock()
		return false
	}
	s.summary = summary
	s.hasSummary = true
	s.mu.Unlock()
	s.notify()
	return true
}

func (s *Store) persistTransactions(ctx context.Context, userID string, ts []core.Transaction) {
	if s.snapshots == nil {
		return
	}
	if err := s.snapshots.SaveTransactions(ctx, userID, ts); err != nil {
		s.logger.WarnContext(ctx, "Transaction snapshot save failed",
			log.FieldOperation, log.OpSnapshot,
			log.FieldError, err.Error())
	}
}

func (s *Store) notify() {
	s.mu.RLock()
	fn := s.onChange
	s.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

func summaryKey(userID string, month, year int) string {
	return fmt.Sprintf("%s/%d-%d", userID, year, month)
}

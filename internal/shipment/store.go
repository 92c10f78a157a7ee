// Package shipment owns the client-side shipment list. Tracking details are
// backend-populated only: the server polls the external carrier and the
// client observes the result on its next fetch.
package shipment

import (
	"context"
	"fmt"
	"sync"

	"lifeassistant/internal/api"
	"lifeassistant/internal/core"
	"lifeassistant/internal/log"
	"lifeassistant/internal/session"
	"lifeassistant/internal/storage"
)

type Store struct {
	client    *api.Client
	session   *session.Session
	snapshots *storage.SnapshotRepository // optional; nil disables offline snapshots
	logger    *log.Logger

	mu        sync.RWMutex
	shipments []core.Shipment
	seq       uint64

	onChange func()
}

func NewStore(client *api.Client, sess *session.Session, snapshots *storage.SnapshotRepository, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Store{
		client:    client,
		session:   sess,
		snapshots: snapshots,
		logger:    logger.WithComponent(log.ComponentShipment),
	}
}

// SetOnChange registers a callback fired after every applied state change.
func (s *Store) SetOnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Shipments returns a copy of the published shipment list.
func (s *Store) Shipments() []core.Shipment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Shipment(nil), s.shipments...)
}

// FetchUserShipments refreshes the shipment list for the signed-in user.
func (s *Store) FetchUserShipments(ctx context.Context) error {
	userID, ok := s.session.CurrentIdentity()
	if !ok {
		return session.ErrNotAuthenticated
	}

	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	resp, err := s.client.ListShipments(ctx, userID)
	if err != nil {
		return err
	}
	if err := resp.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		s.logger.DebugContext(ctx, "Discarded stale shipment fetch")
		return nil
	}
	s.shipments = resp.UserShipments
	s.mu.Unlock()

	s.persist(ctx, userID, resp.UserShipments)
	s.notify()
	return nil
}

// CreateShipment registers a tracking number. The current identity is
// stamped as owner before submission. The backend fetches carrier data
// asynchronously, so the refetch triggered on success may still observe an
// empty detail list.
func (s *Store) CreateShipment(ctx context.Context, trackingNumber string) error {
	userID, ok := s.session.CurrentIdentity()
	if !ok {
		return session.ErrNotAuthenticated
	}

	sh := core.Shipment{ShipmentNumber: trackingNumber, UserID: userID}
	if err := sh.Validate(); err != nil {
		return fmt.Errorf("validate shipment: %w", err)
	}

	resp, err := s.client.CreateShipment(ctx, sh)
	if err != nil {
		return err
	}
	if err := resp.Err(); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Shipment created",
		log.FieldOperation, log.OpCreate,
		log.FieldShipmentNumber, trackingNumber)

	if err := s.FetchUserShipments(ctx); err != nil {
		s.logger.WarnContext(ctx, "Resync after create failed", log.FieldError, err.Error())
	}
	return nil
}

// ForceUpdate asks the backend to re-poll the external carrier for the
// shipment, then refetches the list so the new events become visible.
func (s *Store) ForceUpdate(ctx context.Context, sh core.Shipment) error {
	userID, ok := s.session.CurrentIdentity()
	if !ok {
		return session.ErrNotAuthenticated
	}
	sh.UserID = userID

	resp, err := s.client.UpdateShipmentStatus(ctx, sh)
	if err != nil {
		return err
	}
	if err := resp.Err(); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Shipment status re-polled",
		log.FieldOperation, log.OpForceSync,
		log.FieldShipmentNumber, sh.ShipmentNumber)

	if err := s.FetchUserShipments(ctx); err != nil {
		s.logger.WarnContext(ctx, "Resync after status update failed", log.FieldError, err.Error())
	}
	return nil
}

// DeleteShipment removes a shipment. The backend keys deletion by the
// (identity, trackingNumber) pair; on success the published list is spliced
// by tracking number, never by position.
func (s *Store) DeleteShipment(ctx context.Context, trackingNumber string) error {
	userID, ok := s.session.CurrentIdentity()
	if !ok {
		return session.ErrNotAuthenticated
	}
	if trackingNumber == "" {
		return core.ErrEmptyShipmentNumber
	}

	resp, err := s.client.DeleteShipment(ctx, userID, trackingNumber)
	if err != nil {
		return err
	}
	if err := resp.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	kept := s.shipments[:0:0]
	for _, sh := range s.shipments {
		if sh.ShipmentNumber != trackingNumber {
			kept = append(kept, sh)
		}
	}
	s.shipments = kept
	snapshot := append([]core.Shipment(nil), kept...)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Shipment deleted",
		log.FieldOperation, log.OpDelete,
		log.FieldShipmentNumber, trackingNumber)

	s.persist(ctx, userID, snapshot)
	s.notify()
	return nil
}

// LoadSnapshot hydrates the published list from the offline snapshot store.
func (s *Store) LoadSnapshot(ctx context.Context) error {
	if s.snapshots == nil {
		return nil
	}
	userID, ok := s.session.CurrentIdentity()
	if !ok {
		return session.ErrNotAuthenticated
	}

	shipments, err := s.snapshots.ListShipments(ctx, userID)
	if err != nil {
		return fmt.Errorf("load shipment snapshot: %w", err)
	}

	s.mu.Lock()
	s.shipments = shipments
	s.mu.Unlock()

	s.notify()
	return nil
}

func (s *Store) persist(ctx context.Context, userID string, shipments []core.Shipment) {
	if s.snapshots == nil {
		return
	}
	if err := s.snapshots.SaveShipments(ctx, userID, shipments); err != nil {
		s.logger.WarnContext(ctx, "Shipment snapshot save failed",
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

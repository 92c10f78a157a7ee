package core

import (
	"errors"
	"strings"
)

type (
	// Transaction is a single money movement owned by exactly one user and one
	// bank. Value carries the magnitude only; direction is carried by Income.
	// ID is assigned by the backend and stays empty until creation succeeds.
	Transaction struct {
		ID                 string `json:"_id,omitempty"`
		Name               string `json:"name"`
		Value              Money  `json:"value"`
		Income             bool   `json:"income"`
		Kind               string `json:"kind"`
		BankID             string `json:"bankId"`
		UserID             string `json:"userId"`
		Timestamp          string `json:"timestamp"`
		IsInstallment      bool   `json:"isInstallment,omitempty"`
		InstallmentIndex   int    `json:"installmentIndex,omitempty"`
		InstallmentGroupID string `json:"installmentGroupId,omitempty"`
		IsPaid             bool   `json:"isPaid"`
	}

	// Bank is a user account holding a balance. Revision is the backend's
	// document revision counter and is absent on older records.
	Bank struct {
		ID       string `json:"_id"`
		Name     string `json:"name"`
		Balance  Money  `json:"balance"`
		UserID   string `json:"userId"`
		Revision *int   `json:"__v,omitempty"`
	}

	// BankRequest is the create-bank payload. UserID is stamped by the store
	// from the live session before submission.
	BankRequest struct {
		ID      string `json:"_id,omitempty"`
		Name    string `json:"name"`
		Balance Money  `json:"balance"`
		UserID  string `json:"userId,omitempty"`
	}

	// Shipment is a tracked package. Details are populated only by the
	// backend; a freshly created shipment carries none until the next fetch.
	Shipment struct {
		ID             string          `json:"_id,omitempty"`
		ShipmentNumber string          `json:"shipmentNumber"`
		Details        []TrackingEvent `json:"details,omitempty"`
		UserID         string          `json:"userId,omitempty"`
	}

	// TrackingEvent is one carrier-reported status event. Wire names follow
	// the backend contract verbatim.
	TrackingEvent struct {
		Date        string   `json:"data"`
		Time        string   `json:"hora"`
		Location    string   `json:"local"`
		Status      string   `json:"status"`
		SubStatuses []string `json:"subStatus"`
	}

	// WithdrawSummary is the server-computed aggregate for a month/year
	// window. The client treats it as opaque and refetches it whenever the
	// window or the underlying transaction set changes.
	WithdrawSummary struct {
		Incomes           float64 `json:"incomes"`
		Expenses          float64 `json:"expenses"`
		Withdraw          float64 `json:"withdraw"`
		ScheduledIncomes  float64 `json:"scheduledIncomes"`
		ScheduledExpenses float64 `json:"scheduledExpenses"`
	}
)

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrEmptyName           = errors.New("empty name")
	ErrEmptyKind           = errors.New("empty kind")
	ErrMissingBank         = errors.New("missing bank reference")
	ErrMissingUser         = errors.New("missing user reference")
	ErrEmptyShipmentNumber = errors.New("empty shipment number")
)

func (t Transaction) Validate() error {
	if len(strings.TrimSpace(t.Name)) == 0 {
		return ErrEmptyName
	}
	if err := t.Value.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Kind) == "" {
		return ErrEmptyKind
	}
	if strings.TrimSpace(t.BankID) == "" {
		return ErrMissingBank
	}
	if strings.TrimSpace(t.UserID) == "" {
		return ErrMissingUser
	}
	return nil
}

// SignedCents returns the transaction value as signed minor units, positive
// for incomes and negative for expenses.
func (t Transaction) SignedCents() int64 {
	if t.Income {
		return t.Value.Cents
	}
	return -t.Value.Cents
}

func (b BankRequest) Validate() error {
	if len(strings.TrimSpace(b.Name)) == 0 {
		return ErrEmptyName
	}
	return b.Balance.Validate()
}

func (s Shipment) Validate() error {
	if strings.TrimSpace(s.ShipmentNumber) == "" {
		return ErrEmptyShipmentNumber
	}
	return nil
}

// LatestStatus returns the most recent carrier status, or "" when the backend
// has not reported any tracking event yet.
func (s Shipment) LatestStatus() string {
	if len(s.Details) == 0 {
		return ""
	}
	return s.Details[0].Status
}

package core

import (
	"encoding/json"
	"testing"
)

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Name:   "groceries",
		Value:  Money{Cents: 4200},
		Kind:   "food",
		BankID: "bank-1",
		UserID: "user-1",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{Name: "", Value: Money{Cents: 1}, Kind: "k", BankID: "b", UserID: "u"},
		{Name: "a", Value: Money{Cents: 0}, Kind: "k", BankID: "b", UserID: "u"},
		{Name: "a", Value: Money{Cents: 1}, Kind: "", BankID: "b", UserID: "u"},
		{Name: "a", Value: Money{Cents: 1}, Kind: "k", BankID: "", UserID: "u"},
		{Name: "a", Value: Money{Cents: 1}, Kind: "k", BankID: "b", UserID: ""},
	}
	for i, tr := range bads {
		if err := tr.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestTransactionSignedCents(t *testing.T) {
	income := Transaction{Value: Money{Cents: 500}, Income: true}
	expense := Transaction{Value: Money{Cents: 500}, Income: false}
	if income.SignedCents() != 500 {
		t.Fatalf("income signed = %d, want 500", income.SignedCents())
	}
	if expense.SignedCents() != -500 {
		t.Fatalf("expense signed = %d, want -500", expense.SignedCents())
	}
}

func TestShipmentValidate(t *testing.T) {
	if err := (Shipment{ShipmentNumber: "LB123456789BR"}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Shipment{ShipmentNumber: "  "}).Validate(); err == nil {
		t.Fatalf("expected error for blank shipment number")
	}
}

func TestShipmentLatestStatus(t *testing.T) {
	s := Shipment{ShipmentNumber: "LB1"}
	if s.LatestStatus() != "" {
		t.Fatalf("expected empty status for shipment without details")
	}
	s.Details = []TrackingEvent{
		{Status: "out for delivery"},
		{Status: "posted"},
	}
	if got := s.LatestStatus(); got != "out for delivery" {
		t.Fatalf("LatestStatus = %q", got)
	}
}

func TestTrackingEventWireNames(t *testing.T) {
	ev := TrackingEvent{
		Date:        "02/01/2024",
		Time:        "14:32",
		Location:    "Curitiba / PR",
		Status:      "posted",
		SubStatuses: []string{"Objeto postado"},
	}
	b, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"data", "hora", "local", "status", "subStatus"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("missing wire field %q", key)
		}
	}
}

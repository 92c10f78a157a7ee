package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"lifeassistant/internal/core"
)

// Response shapes, one per backend endpoint. Each embeds Envelope so callers
// check application-level failure with Err().
type (
	TransactionsResponse struct {
		Envelope
		Transactions []core.Transaction `json:"transactions"`
	}

	WithdrawResponse struct {
		Envelope
		core.WithdrawSummary
	}

	BanksResponse struct {
		Envelope
		Banks []core.Bank `json:"banks"`
	}

	CreateTransactionResponse struct {
		Envelope
	}

	ConfirmPayResponse struct {
		Envelope
	}

	DeleteResponse struct {
		Envelope
	}

	CreateBankResponse struct {
		Envelope
		Bank core.Bank `json:"bank"`
	}

	ShipmentsResponse struct {
		Envelope
		UserShipments []core.Shipment `json:"userShipments"`
	}

	CreateShipmentResponse struct {
		Envelope
		Shipment         core.Shipment `json:"shipment"`
		APIRequestStatus string        `json:"apiRequestStatus"`
	}

	UpdateShipmentResponse struct {
		Envelope
		APIRequestStatus string `json:"apiRequestStatus"`
	}
)

type confirmPayRequest struct {
	TransactionID string `json:"transactionId"`
}

// windowQuery builds the shared userId/month/year query. Zero month or year
// means "do not send": the backend applies its default window.
func windowQuery(userID string, month, year int) url.Values {
	q := url.Values{"userId": {userID}}
	if month != 0 && year != 0 {
		q.Set("month", strconv.Itoa(month))
		q.Set("year", strconv.Itoa(year))
	}
	return q
}

// ListTransactions fetches the user's transactions, optionally scoped to a
// month/year window and capped server-side by limit (0 means no cap).
func (c *Client) ListTransactions(ctx context.Context, userID string, month, year, limit int) (TransactionsResponse, error) {
	q := windowQuery(userID, month, year)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return Do[TransactionsResponse](ctx, c, http.MethodGet, "/finances/user_transactions", q, nil)
}

// FetchWithdraw fetches the server-computed summary for the window.
func (c *Client) FetchWithdraw(ctx context.Context, userID string, month, year int) (WithdrawResponse, error) {
	return Do[WithdrawResponse](ctx, c, http.MethodGet, "/finances/user_withdraw", windowQuery(userID, month, year), nil)
}

func (c *Client) ListBanks(ctx context.Context, userID string) (BanksResponse, error) {
	q := url.Values{"userId": {userID}}
	return Do[BanksResponse](ctx, c, http.MethodGet, "/finances/user_banks", q, nil)
}

func (c *Client) CreateTransaction(ctx context.Context, t core.Transaction) (CreateTransactionResponse, error) {
	return Do[CreateTransactionResponse](ctx, c, http.MethodPost, "/finances/transactions", nil, t)
}

func (c *Client) ConfirmPay(ctx context.Context, transactionID string) (ConfirmPayResponse, error) {
	body := confirmPayRequest{TransactionID: transactionID}
	return Do[ConfirmPayResponse](ctx, c, http.MethodPatch, "/finances/transactions/confirm_pay", nil, body)
}

func (c *Client) DeleteTransaction(ctx context.Context, transactionID string) (DeleteResponse, error) {
	q := url.Values{"transactionId": {transactionID}}
	return Do[DeleteResponse](ctx, c, http.MethodDelete, "/finances/transactions", q, nil)
}

func (c *Client) CreateBank(ctx context.Context, req core.BankRequest) (CreateBankResponse, error) {
	return Do[CreateBankResponse](ctx, c, http.MethodPost, "/finances/banks", nil, req)
}

func (c *Client) ListShipments(ctx context.Context, userID string) (ShipmentsResponse, error) {
	q := url.Values{"userId": {userID}}
	return Do[ShipmentsResponse](ctx, c, http.MethodGet, "/shipments", q, nil)
}

func (c *Client) CreateShipment(ctx context.Context, s core.Shipment) (CreateShipmentResponse, error) {
	return Do[CreateShipmentResponse](ctx, c, http.MethodPost, "/shipments", nil, s)
}

// UpdateShipmentStatus asks the backend to re-poll the external carrier.
func (c *Client) UpdateShipmentStatus(ctx context.Context, s core.Shipment) (UpdateShipmentResponse, error) {
	return Do[UpdateShipmentResponse](ctx, c, http.MethodPost, "/shipments/update_status", nil, s)
}

// DeleteShipment removes a shipment keyed by the (userId, shipmentNumber)
// pair; the composite is the delete key, not the shipment's identifier.
func (c *Client) DeleteShipment(ctx context.Context, userID, shipmentNumber string) (DeleteResponse, error) {
	q := url.Values{"userId": {userID}, "shipmentNumber": {shipmentNumber}}
	return Do[DeleteResponse](ctx, c, http.MethodDelete, "/shipments", q, nil)
}

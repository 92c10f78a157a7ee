package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifeassistant/internal/core"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 2*time.Second, nil)
}

func TestDoSuccess(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		json.NewEncoder(w).Encode(map[string]any{"status": "success", "message": "ok"})
	})

	resp, err := Do[DeleteResponse](context.Background(), c, http.MethodGet, "/x", nil, nil)
	require.NoError(t, err)
	assert.NoError(t, resp.Err())
	assert.Equal(t, "ok", resp.Message)
}

func TestDoTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	c := NewClient(url, time.Second, nil)

	_, err := Do[DeleteResponse](context.Background(), c, http.MethodGet, "/x", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
}

func TestDoEmptyBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	_, err := Do[DeleteResponse](context.Background(), c, http.MethodGet, "/x", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyBody)
}

func TestDoDecodeError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all"))
	})

	_, err := Do[DeleteResponse](context.Background(), c, http.MethodGet, "/x", nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestEnvelopeErr(t *testing.T) {
	assert.NoError(t, Envelope{Status: "success"}.Err())
	// A missing status field decodes to "" and counts as success.
	assert.NoError(t, Envelope{}.Err())

	err := Envelope{Status: "error", Message: "invalid bank"}.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAPI)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "invalid bank", apiErr.Message)
}

func TestListTransactionsQuery(t *testing.T) {
	var got string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.RawQuery
		json.NewEncoder(w).Encode(TransactionsResponse{})
	})

	_, err := c.ListTransactions(context.Background(), "u1", 3, 2024, 10)
	require.NoError(t, err)
	assert.Contains(t, got, "userId=u1")
	assert.Contains(t, got, "month=3")
	assert.Contains(t, got, "year=2024")
	assert.Contains(t, got, "limit=10")

	// Omitted window and limit: the backend default applies, nothing is sent.
	_, err = c.ListTransactions(context.Background(), "u1", 0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "userId=u1", got)
}

func TestConfirmPayRequest(t *testing.T) {
	var method string
	var body confirmPayRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		json.NewDecoder(r.Body).Decode(&body)
		json.NewEncoder(w).Encode(map[string]string{"status": "success", "message": "ok"})
	})

	resp, err := c.ConfirmPay(context.Background(), "tx-9")
	require.NoError(t, err)
	require.NoError(t, resp.Err())
	assert.Equal(t, http.MethodPatch, method)
	assert.Equal(t, "tx-9", body.TransactionID)
}

func TestDeleteShipmentQuery(t *testing.T) {
	var method, query string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		query = r.URL.RawQuery
		json.NewEncoder(w).Encode(map[string]string{"status": "success", "message": "deleted"})
	})

	_, err := c.DeleteShipment(context.Background(), "u1", "LB123")
	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, method)
	assert.Contains(t, query, "userId=u1")
	assert.Contains(t, query, "shipmentNumber=LB123")
}

func TestWithdrawDecoding(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"incomes": 500.0, "expenses": 200.0, "withdraw": 300.0, "scheduledIncomes": 50.0, "scheduledExpenses": 10.0, "message": "ok"}`))
	})

	resp, err := c.FetchWithdraw(context.Background(), "u1", 3, 2024)
	require.NoError(t, err)
	require.NoError(t, resp.Err())
	assert.Equal(t, 300.0, resp.Withdraw)
	assert.Equal(t, 500.0, resp.Incomes)
	assert.Equal(t, 200.0, resp.Expenses)
	assert.Equal(t, 50.0, resp.ScheduledIncomes)
}

func TestCreateTransactionWireAmount(t *testing.T) {
	var raw map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&raw)
		json.NewEncoder(w).Encode(map[string]string{"status": "success", "message": "ok"})
	})

	tx := core.Transaction{
		Name:   "rent",
		Value:  core.Money{Cents: 12345},
		Kind:   "housing",
		BankID: "b1",
		UserID: "u1",
	}
	_, err := c.CreateTransaction(context.Background(), tx)
	require.NoError(t, err)
	// Minor units entered as 12345 cents cross the wire as 123.45.
	assert.Equal(t, 123.45, raw["value"])
}

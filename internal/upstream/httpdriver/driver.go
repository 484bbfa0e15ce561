// Package httpdriver implements the upstream connector over the budgeting
// client's HTTP API. Every call is a POST of a JSON payload; the reply is a
// {data, error} envelope and the api error code not_supported maps to
// upstream.ErrNotSupported so the gateway can fall through to its next
// strategy.
package httpdriver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/iho/budgetbridge/internal/upstream"
)

// Config holds driver configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Driver talks to the upstream budgeting client over HTTP. It implements
// the full connector surface including the optional capabilities; the
// upstream side still reports not_supported per call where its installed
// version lacks one.
type Driver struct {
	baseURL string
	client  *http.Client
}

var _ upstream.Connector = (*Driver)(nil)

// New creates a new Driver.
func New(cfg Config) *Driver {
	return &Driver{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiEnvelope struct {
	Data  json.RawMessage `json:"data"`
	Error *apiError       `json:"error"`
}

// notSupportedCode is the upstream api error code for a call the installed
// client version lacks.
const notSupportedCode = "not_supported"

func (d *Driver) call(ctx context.Context, op string, payload, out any) error {
	body := []byte("{}")
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal %s payload: %w", op, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/"+op, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", op, err)
	}
	defer resp.Body.Close()

	var envelope apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decode %s response (status %d): %w", op, resp.StatusCode, err)
	}

	if envelope.Error != nil {
		if envelope.Error.Code == notSupportedCode {
			return upstream.ErrNotSupported
		}
		return fmt.Errorf("%s failed: %s: %s", op, envelope.Error.Code, envelope.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s failed: status %d", op, resp.StatusCode)
	}

	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("decode %s data: %w", op, err)
		}
	}
	return nil
}

func (d *Driver) Init(ctx context.Context) error {
	return d.call(ctx, "init", nil, nil)
}

func (d *Driver) Login(ctx context.Context, password string) error {
	return d.call(ctx, "login", map[string]string{"password": password}, nil)
}

func (d *Driver) Shutdown(ctx context.Context) error {
	return d.call(ctx, "shutdown", nil, nil)
}

func (d *Driver) DownloadBudget(ctx context.Context, id string) error {
	return d.call(ctx, "download-budget", map[string]string{"budgetId": id}, nil)
}

func (d *Driver) CloseBudget(ctx context.Context) error {
	return d.call(ctx, "close-budget", nil, nil)
}

func (d *Driver) Sync(ctx context.Context) error {
	return d.call(ctx, "sync", nil, nil)
}

func (d *Driver) Accounts(ctx context.Context) ([]upstream.Record, error) {
	var records []upstream.Record
	err := d.call(ctx, "accounts", nil, &records)
	return records, err
}

func (d *Driver) Categories(ctx context.Context) ([]upstream.Record, error) {
	var records []upstream.Record
	err := d.call(ctx, "categories", nil, &records)
	return records, err
}

func (d *Driver) Payees(ctx context.Context) ([]upstream.Record, error) {
	var records []upstream.Record
	err := d.call(ctx, "payees", nil, &records)
	return records, err
}

func (d *Driver) CreatePayee(ctx context.Context, name string) (upstream.Record, error) {
	var record upstream.Record
	err := d.call(ctx, "create-payee", map[string]string{"name": name}, &record)
	return record, err
}

func (d *Driver) AccountTransactions(ctx context.Context, accountID, from, to string) ([]upstream.Record, error) {
	var records []upstream.Record
	err := d.call(ctx, "account-transactions", map[string]string{
		"account": accountID,
		"from":    from,
		"to":      to,
	}, &records)
	return records, err
}

func (d *Driver) ImportTransaction(ctx context.Context, fields upstream.TransactionFields) (upstream.Record, error) {
	var record upstream.Record
	err := d.call(ctx, "import-transaction", transactionPayload(fields), &record)
	return record, err
}

// Optional capability surface. The upstream api reports not_supported per
// call where the installed client version lacks one.

func (d *Driver) ListBudgets(ctx context.Context) ([]upstream.Record, error) {
	var records []upstream.Record
	err := d.call(ctx, "list-budgets", nil, &records)
	return records, err
}

func (d *Driver) BudgetFiles(ctx context.Context) ([]upstream.Record, error) {
	var records []upstream.Record
	err := d.call(ctx, "budget-files", nil, &records)
	return records, err
}

func (d *Driver) TransactionsInRange(ctx context.Context, accountID, from, to string) ([]upstream.Record, error) {
	var records []upstream.Record
	err := d.call(ctx, "transactions-in-range", map[string]string{
		"account": accountID,
		"from":    from,
		"to":      to,
	}, &records)
	return records, err
}

func (d *Driver) AddTransaction(ctx context.Context, fields upstream.TransactionFields) (upstream.Record, error) {
	var record upstream.Record
	err := d.call(ctx, "add-transaction", transactionPayload(fields), &record)
	return record, err
}

func (d *Driver) CreateTransactionRaw(ctx context.Context, fields upstream.TransactionFields) (upstream.Record, error) {
	var record upstream.Record
	err := d.call(ctx, "create-transaction-raw", transactionPayload(fields), &record)
	return record, err
}

func transactionPayload(fields upstream.TransactionFields) map[string]any {
	payload := map[string]any{
		"account":  fields.AccountID,
		"category": fields.CategoryID,
		"payee":    fields.PayeeID,
		"date":     fields.Date,
		"amount":   fields.Amount,
	}
	if fields.Notes != "" {
		payload["notes"] = fields.Notes
	}
	return payload
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	apiKey  string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "budgetbridge-cli",
		Short: "BudgetBridge CLI tool",
		Long:  `A command line interface for interacting with the BudgetBridge API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the BudgetBridge API")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "API key for authenticated endpoints")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(healthCmd())

	budgetsCmd := &cobra.Command{
		Use:   "budgets",
		Short: "Budget operations",
	}
	budgetsCmd.AddCommand(budgetsListCmd())
	rootCmd.AddCommand(budgetsCmd)

	entriesCmd := &cobra.Command{
		Use:   "entries",
		Short: "Ledger entry operations",
	}
	entriesCmd.AddCommand(entriesListCmd(), entriesCreateCmd())
	rootCmd.AddCommand(entriesCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check service and upstream connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := get("/health", nil)
			if err != nil {
				return err
			}
			printJSON(body)
			return nil
		},
	}
}

func budgetsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List budgets visible through the bridge",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := get("/budgets", nil)
			if err != nil {
				return err
			}
			printJSON(body)
			return nil
		},
	}
}

func entriesListCmd() *cobra.Command {
	var budget, from, to, flow string
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List ledger entries in a date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			query.Set("from", from)
			query.Set("to", to)
			if flow != "" {
				query.Set("flow", flow)
			}
			query.Set("limit", strconv.Itoa(limit))
			query.Set("offset", strconv.Itoa(offset))

			body, err := get("/budgets/"+url.PathEscape(budget)+"/entries", query)
			if err != nil {
				return err
			}
			printJSON(body)
			return nil
		},
	}

	cmd.Flags().StringVar(&budget, "budget", "", "Budget id")
	cmd.Flags().StringVar(&from, "from", "", "Range start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Range end (YYYY-MM-DD)")
	cmd.Flags().StringVar(&flow, "flow", "", "Flow filter: all, income or expense")
	cmd.Flags().IntVar(&limit, "limit", 100, "Page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "Page offset")
	cmd.MarkFlagRequired("budget")
	cmd.MarkFlagRequired("from")
	cmd.MarkFlagRequired("to")

	return cmd
}

func entriesCreateCmd() *cobra.Command {
	var budget, amount, flow, date, payee, category, account, notes, idempotencyKey string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a ledger entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]any{
				"amount":   json.Number(amount),
				"flow":     flow,
				"date":     date,
				"payee":    payee,
				"category": category,
				"account":  account,
			}
			if notes != "" {
				payload["notes"] = notes
			}

			headers := map[string]string{}
			if idempotencyKey != "" {
				headers["Idempotency-Key"] = idempotencyKey
			}

			body, err := post("/budgets/"+url.PathEscape(budget)+"/entries", payload, headers)
			if err != nil {
				return err
			}
			printJSON(body)
			return nil
		},
	}

	cmd.Flags().StringVar(&budget, "budget", "", "Budget id")
	cmd.Flags().StringVar(&amount, "amount", "", "Positive decimal amount")
	cmd.Flags().StringVar(&flow, "flow", "", "income or expense")
	cmd.Flags().StringVar(&date, "date", "", "Entry date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&payee, "payee", "", "Payee name")
	cmd.Flags().StringVar(&category, "category", "", "Category name")
	cmd.Flags().StringVar(&account, "account", "", "Account name")
	cmd.Flags().StringVar(&notes, "notes", "", "Optional notes")
	cmd.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "Idempotency key for safe retries")
	cmd.MarkFlagRequired("budget")
	cmd.MarkFlagRequired("amount")
	cmd.MarkFlagRequired("flow")
	cmd.MarkFlagRequired("date")
	cmd.MarkFlagRequired("payee")
	cmd.MarkFlagRequired("category")
	cmd.MarkFlagRequired("account")

	return cmd
}

func get(path string, query url.Values) (any, error) {
	target := baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequest(http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	return do(req)
}

func post(path string, payload any, headers map[string]string) (any, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequest(http.MethodPost, baseURL+path, strings.NewReader(string(body)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	return do(req)
}

func do(req *http.Request) (any, error) {
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var body any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("unexpected response (status %d): %s", resp.StatusCode, raw)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("request failed (status %d): %s", resp.StatusCode, raw)
	}
	return body, nil
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Println(v)
		return
	}
	fmt.Println(string(out))
}

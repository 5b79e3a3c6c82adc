package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "crickex-cli",
		Short: "Crickex ledger CLI tool",
		Long:  `A command line interface for operating the Crickex trading and settlement ledger API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the ledger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	// Settlement commands
	settleCmd := &cobra.Command{
		Use:   "settle <market-key> <winner>",
		Short: "Settle a market with the winning direction (A or B)",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			adminID, _ := cmd.Flags().GetString("admin")
			settleMarket(args[0], args[1], adminID)
		},
	}
	settleCmd.Flags().String("admin", "cli", "Admin identifier recorded on the settlement")
	rootCmd.AddCommand(settleCmd)

	// Account commands
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Account operations",
	}

	accountGetCmd := &cobra.Command{
		Use:   "get <user-id>",
		Short: "Show a user's balance and held balance",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			getJSON("/api/v1/accounts/" + args[0])
		},
	}

	accountTxnsCmd := &cobra.Command{
		Use:   "transactions <user-id>",
		Short: "List a user's transaction history",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			getJSON("/api/v1/accounts/" + args[0] + "/transactions")
		},
	}

	accountPortfolioCmd := &cobra.Command{
		Use:   "portfolio <user-id>",
		Short: "List a user's open positions marked at current prices",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			getJSON("/api/v1/accounts/" + args[0] + "/portfolio")
		},
	}

	accountCmd.AddCommand(accountGetCmd, accountTxnsCmd, accountPortfolioCmd)
	rootCmd.AddCommand(accountCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func settleMarket(marketKey, winner, adminID string) {
	payload, _ := json.Marshal(map[string]string{
		"market_key": marketKey,
		"winner":     winner,
		"admin_id":   adminID,
	})

	client := &http.Client{Timeout: timeout}
	resp, err := client.Post(baseURL+"/api/v1/settlements/", "application/json", bytes.NewReader(payload))
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Settlement FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Market %s settled, winner %s\n", marketKey, winner)
	fmt.Printf("Positions processed: %v\n", result["processed"])
	fmt.Printf("Total payout: %v\n", result["total_payout"])
	if failed, ok := result["failed"].([]any); ok && len(failed) > 0 {
		fmt.Printf("Failed positions: %d (safe to re-run)\n", len(failed))
	}
}

func getJSON(path string) {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + path)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Request FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		fmt.Println(string(body))
		return
	}
	fmt.Println(pretty.String())
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"khata-advisor/internal/domain"
	"khata-advisor/internal/prompt"
	"khata-advisor/internal/relay"
)

const defaultEndpoint = "http://localhost:8080/api/ai/chat"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "advisorctl",
		Short: "CLI for the Khata financial advisor",
		Long: `advisorctl sends chat messages to the advisor proxy together with a
transaction history, or prints the system prompt built from that history.

Examples:
  advisorctl ask "How can I save more?" --transactions txs.json
  advisorctl ask "Any budget tips?" --history chat.json --fallback
  advisorctl prompt --transactions txs.json`,
		SilenceUsage: true,
	}
	root.AddCommand(newAskCmd())
	root.AddCommand(newPromptCmd())
	return root
}

func newAskCmd() *cobra.Command {
	var (
		endpoint     string
		txFile       string
		historyFile  string
		withFallback bool
		timeout      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "ask [message]",
		Short: "Send one message to the advisor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			txs, err := readTransactions(txFile)
			if err != nil {
				return err
			}
			history, err := readHistory(historyFile)
			if err != nil {
				return err
			}

			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelError}))
			client, err := relay.New(endpoint, relay.WithLogger(logger))
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			res := client.GetChatResponse(ctx, args[0], history, txs)
			if res.Success {
				fmt.Fprintln(cmd.OutOrStdout(), res.Message)
				return nil
			}
			if withFallback {
				fmt.Fprintf(cmd.ErrOrStderr(), "advisor unavailable: %s\n", res.Error)
				fmt.Fprintln(cmd.OutOrStdout(), relay.Fallback(args[0]))
				return nil
			}
			return errors.New(res.Error)
		},
	}

	cmd.Flags().StringVarP(&endpoint, "endpoint", "e", defaultEndpoint, "Proxy chat endpoint URL")
	cmd.Flags().StringVarP(&txFile, "transactions", "t", "", "JSON file with the transaction list")
	cmd.Flags().StringVar(&historyFile, "history", "", "JSON file with prior chat messages")
	cmd.Flags().BoolVar(&withFallback, "fallback", false, "Print canned guidance when the advisor fails")
	cmd.Flags().DurationVar(&timeout, "timeout", 60*time.Second, "Request timeout")
	return cmd
}

func newPromptCmd() *cobra.Command {
	var txFile string

	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Print the system prompt built from a transaction list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			txs, err := readTransactions(txFile)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), prompt.BuildSystemPrompt(txs))
			return nil
		},
	}

	cmd.Flags().StringVarP(&txFile, "transactions", "t", "", "JSON file with the transaction list")
	return cmd
}

func readTransactions(path string) ([]domain.Transaction, error) {
	var txs []domain.Transaction
	if err := readJSONFile(path, &txs); err != nil {
		return nil, fmt.Errorf("read transactions: %w", err)
	}
	return txs, nil
}

func readHistory(path string) ([]domain.ChatMessage, error) {
	var history []domain.ChatMessage
	if err := readJSONFile(path, &history); err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return history, nil
}

// readJSONFile leaves v untouched when path is empty.
func readJSONFile(path string, v any) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/scamshield/contact-monitor/internal/adapters/lookup"
	"github.com/scamshield/contact-monitor/internal/config"
	"github.com/scamshield/contact-monitor/internal/core"
	"github.com/scamshield/contact-monitor/internal/logging"
)

var (
	baseURL     string
	apiKey      string
	timeout     time.Duration
	countryCode string
	verbose     bool
	jsonLog     bool
)

// checkOutput mirrors the manual check contract consumed by the UI.
type checkOutput struct {
	Success   bool                `json:"success"`
	IsScammer *bool               `json:"isScammer,omitempty"`
	Data      *core.ScammerRecord `json:"data,omitempty"`
	Message   string              `json:"message,omitempty"`
	Error     string              `json:"error,omitempty"`
}

func main() {
	root := &cobra.Command{
		Use:           "scam-check",
		Short:         "Check and report phone numbers against the ScamShield service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&baseURL, "base-url", "", "Lookup service base URL (overrides config)")
	root.PersistentFlags().StringVar(&apiKey, "api-key", "", "Lookup service API key (overrides config)")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Request timeout (overrides config)")
	root.PersistentFlags().StringVar(&countryCode, "country-code", "", "Default country code, e.g. +250 (overrides config)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	root.PersistentFlags().BoolVar(&jsonLog, "json-log", false, "Output logs in JSON format")

	root.AddCommand(newCheckCmd(), newReportCmd(), newStatsCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <phone-number>",
		Short: "Check whether a phone number has been reported as a scammer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, normalizer, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			identifier, err := normalizer.Normalize(args[0])
			if err != nil {
				return printOutput(checkOutput{Success: false, Message: "invalid phone number", Error: err.Error()})
			}
			logger.Debug("Normalized identifier", zap.String("identifier", identifier))

			result, err := client.Check(context.Background(), identifier)
			if err != nil {
				return printOutput(checkOutput{Success: false, Message: "lookup failed", Error: err.Error()})
			}

			message := "no reports found for this number"
			if result.IsMatch {
				message = "this number has been reported as a scammer"
			}
			return printOutput(checkOutput{
				Success:   true,
				IsScammer: &result.IsMatch,
				Data:      result.Match,
				Message:   message,
			})
		},
	}
}

func newReportCmd() *cobra.Command {
	var (
		description    string
		additionalInfo string
		source         string
	)

	cmd := &cobra.Command{
		Use:   "report <phone-number>",
		Short: "Report a phone number as a scammer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, normalizer, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			identifier, err := normalizer.Normalize(args[0])
			if err != nil {
				return err
			}

			record, err := client.Report(context.Background(), core.ReportRequest{
				Type:           "phone",
				Identifier:     identifier,
				Description:    description,
				AdditionalInfo: additionalInfo,
				Source:         source,
			})
			if err != nil {
				return err
			}

			logger.Info("Report submitted", zap.String("identifier", identifier))
			return printJSON(record)
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Why this number is a scam (at least 10 characters)")
	cmd.Flags().StringVar(&additionalInfo, "additional-info", "", "Optional extra context")
	cmd.Flags().StringVar(&source, "source", "cli", "Report source label")
	cmd.MarkFlagRequired("description")

	return cmd
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Fetch aggregate counts from the lookup service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			stats, err := client.RemoteStats(context.Background())
			if err != nil {
				return err
			}
			return printJSON(stats)
		},
	}
}

// setup builds the client pieces from config plus flag overrides.
func setup() (*lookup.Client, core.Normalizer, *zap.Logger, error) {
	logger, err := logging.InitConsoleLogger(verbose, jsonLog)
	if err != nil {
		return nil, core.Normalizer{}, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg, err := config.New()
	if err != nil {
		return nil, core.Normalizer{}, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	lookupCfg := cfg.GetLookup()
	if baseURL == "" {
		baseURL = lookupCfg.BaseURL
	}
	if apiKey == "" {
		apiKey = lookupCfg.APIKey
	}
	if timeout == 0 {
		timeout, err = cfg.GetDuration("lookup.timeout")
		if err != nil {
			return nil, core.Normalizer{}, nil, fmt.Errorf("invalid lookup timeout: %w", err)
		}
	}

	normCfg := cfg.GetNormalizer()
	if countryCode != "" {
		normCfg.DefaultCountryCode = countryCode
	}
	normalizer := core.NewNormalizer(normCfg.DefaultCountryCode, normCfg.TrunkPrefix, normCfg.MinDigits, normCfg.MaxDigits)

	client := lookup.NewClient(baseURL, apiKey, timeout, logger)
	return client, normalizer, logger, nil
}

func printOutput(out checkOutput) error {
	return printJSON(out)
}

func printJSON(v interface{}) error {
	encoded, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	fmt.Println(string(encoded))
	return nil
}

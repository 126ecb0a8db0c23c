package main

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/Veraticus/finpulse/internal/cli"
	"github.com/Veraticus/finpulse/internal/common"
	"github.com/Veraticus/finpulse/internal/ingest"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze STATEMENT",
		Short: "Analyze one customer's statement",
		Long: `Read a CSV or OFX/QFX statement, classify the customer and print the
single guarded action together with the insights that led to it.

The debt-to-income ratio is taken from --dti when given, otherwise it is
computed from --obligation divided by --income. A monthly obligation is
compared with annual income after both are converted to monthly amounts.`,
		Args: cobra.ExactArgs(1),
		RunE: runAnalyze,
	}

	cmd.Flags().String("customer", "", "customer id (default: statement file name)")
	cmd.Flags().Int("age", 0, "customer age in years")
	cmd.Flags().String("income", "", "customer income")
	cmd.Flags().String("description", "", "free-text note about the customer")
	cmd.Flags().Float64("dti", 0, "debt-to-income ratio")
	cmd.Flags().String("obligation", "", "proposed debt obligation used to compute the ratio")
	cmd.Flags().String("obligation-period", "", "period of --obligation: annual or monthly (default: policy income unit)")
	cmd.Flags().String("account", "", "only read CSV rows of this account")
	cmd.Flags().StringP("output", "o", "text", "output format (text, json, yaml)")
	cmd.Flags().Bool("record", false, "store the analysis in the audit database")
	cmd.Flags().String("analyst", "", "analyst id recorded with the analysis")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	path := args[0]

	format, err := cli.ParseFormat(mustString(cmd, "output"))
	if err != nil {
		return err
	}

	input := customerInput{
		CustomerID:       mustString(cmd, "customer"),
		Income:           mustString(cmd, "income"),
		Obligation:       mustString(cmd, "obligation"),
		ObligationPeriod: mustString(cmd, "obligation-period"),
		Description:      mustString(cmd, "description"),
	}
	input.Age, _ = cmd.Flags().GetInt("age")
	if cmd.Flags().Changed("dti") {
		dti, _ := cmd.Flags().GetFloat64("dti")
		input.DTI = &dti
	}
	if input.CustomerID == "" {
		input.CustomerID = customerIDFromPath(path)
	}

	loader, err := ingest.NewLoader(slog.Default())
	if err != nil {
		return err
	}
	if account := mustString(cmd, "account"); account != "" {
		loader = loader.WithAccount(account)
	}

	transactions, err := loader.Load(ctx, path)
	if err != nil {
		return err
	}

	req, err := input.request(transactions)
	if err != nil {
		return err
	}

	eng, cleanup, err := initEngine(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	analysis, err := eng.Evaluate(ctx, req)
	if err != nil {
		if errors.Is(err, common.ErrInvalidInput) || errors.Is(err, common.ErrGuardrailPrecondition) {
			return common.NewUserError("cannot analyze "+input.CustomerID, err)
		}
		return fmt.Errorf("analysis of %s failed: %w", input.CustomerID, err)
	}

	if shouldRecord(cmd) {
		store, err := initStorage(ctx)
		if err != nil {
			return err
		}
		defer closeQuietly(store)

		record, err := store.SaveAnalysis(ctx, analystID(mustString(cmd, "analyst")), analysis)
		if err != nil {
			return fmt.Errorf("failed to record analysis: %w", err)
		}
		slog.Info("Recorded analysis", "id", record.ID, "customer_id", record.CustomerID)
	}

	return cli.RenderAnalysis(cmd.OutOrStdout(), input.CustomerID, analysis, format)
}

// shouldRecord honors --record, falling back to audit.record from the config.
func shouldRecord(cmd *cobra.Command) bool {
	if cmd.Flags().Changed("record") {
		v, _ := cmd.Flags().GetBool("record")
		return v
	}
	return viper.GetBool("audit.record")
}

func mustString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}

// customerIDFromPath uses the statement file name as the customer id.
func customerIDFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

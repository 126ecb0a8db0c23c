package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/Veraticus/finpulse/internal/cli"
	"github.com/Veraticus/finpulse/internal/common"
	"github.com/Veraticus/finpulse/internal/engine"
	"github.com/Veraticus/finpulse/internal/ingest"
	"github.com/Veraticus/finpulse/internal/storage"
	"github.com/spf13/cobra"
)

func batchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch DIR",
		Short: "Analyze every statement in a directory",
		Long: `Analyze one statement file per customer. The file name without its
extension is the customer id. Ages, incomes, descriptions, ratios and
obligations can be supplied per customer with --profiles, a YAML list of
entries like:

  - customer_id: alice
    age: 34
    income: "1200000"
    dti: 0.3
  - customer_id: bob
    income: "1200000"
    obligation: "40000"
    obligation_period: monthly`,
		Args: cobra.ExactArgs(1),
		RunE: runBatch,
	}

	cmd.Flags().String("profiles", "", "YAML file with per-customer inputs")
	cmd.Flags().Int("workers", engine.DefaultBatchOptions().ParallelWorkers, "number of parallel workers")
	cmd.Flags().Bool("record", false, "store every analysis in the audit database")
	cmd.Flags().String("analyst", "", "analyst id recorded with the analyses")
	cmd.Flags().Bool("quiet", false, "hide the progress bar")

	return cmd
}

type batchJob struct {
	path       string
	customerID string
}

func runBatch(cmd *cobra.Command, args []string) error {
	handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
	record := shouldRecord(cmd)
	ctx := handler.HandleInterrupts(cmd.Context(), record)

	loader, err := ingest.NewLoader(slog.Default())
	if err != nil {
		return err
	}

	jobs, err := findStatements(args[0], loader)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		return fmt.Errorf("no statements found in %s", args[0])
	}

	profiles := map[string]customerInput{}
	if path := mustString(cmd, "profiles"); path != "" {
		if profiles, err = loadProfiles(path); err != nil {
			return err
		}
	}

	reqs := make([]engine.Request, 0, len(jobs))
	kept := make([]batchJob, 0, len(jobs))
	for _, job := range jobs {
		input := profiles[job.customerID]
		input.CustomerID = job.customerID

		transactions, err := loader.Load(ctx, job.path)
		if err != nil {
			slog.Warn("Skipping statement", "path", job.path, "error", err)
			continue
		}
		req, err := input.request(transactions)
		if err != nil {
			slog.Warn("Skipping customer", "customer_id", job.customerID, "error", err)
			continue
		}
		reqs = append(reqs, req)
		kept = append(kept, job)
	}

	eng, cleanup, err := initEngine(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	var store *storage.SQLiteStorage
	if record {
		if store, err = initStorage(ctx); err != nil {
			return err
		}
		defer closeQuietly(store)
	}

	opts := engine.DefaultBatchOptions()
	opts.ParallelWorkers, _ = cmd.Flags().GetInt("workers")

	var progress *cli.Progress
	if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
		progress = cli.NewProgress(cmd.ErrOrStderr(), len(reqs), "Analyzing customers...")
		opts.OnResult = func(engine.BatchResult) { progress.Step() }
	}

	results, summary := eng.AnalyzeBatch(ctx, reqs, opts)
	if progress != nil {
		progress.Finish()
	}

	analyst := analystID(mustString(cmd, "analyst"))
	failed := summary.Failed + len(jobs) - len(kept)
	for _, res := range results {
		job := kept[res.Index]
		if res.Error != nil {
			common.LogError(ctx, res.Error, "Analysis failed", common.Fields{"customer_id": job.customerID})
			continue
		}
		slog.Info("Analyzed customer",
			"customer_id", job.customerID,
			"persona", res.Analysis.Classification.Persona,
			"action", res.Analysis.Action.Type,
			"verdict", res.Analysis.Verdict.Status)

		if store == nil {
			continue
		}
		if _, err := store.SaveAnalysis(ctx, analyst, res.Analysis); err != nil {
			common.LogError(ctx, err, "Failed to record analysis", common.Fields{"customer_id": job.customerID})
			failed++
		}
	}

	if err := cli.RenderBatchSummary(cmd.OutOrStdout(), len(jobs), failed, summary.ActionCounts); err != nil {
		return err
	}
	if handler.WasInterrupted() {
		return fmt.Errorf("batch interrupted: %w", ctx.Err())
	}
	return nil
}

// findStatements lists the supported statement files of dir in name order.
func findStatements(dir string, loader *ingest.Loader) ([]batchJob, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var jobs []batchJob
	for _, entry := range entries {
		if entry.IsDir() || !loader.Supports(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		jobs = append(jobs, batchJob{path: path, customerID: customerIDFromPath(path)})
	}

	sort.Slice(jobs, func(i, j int) bool { return jobs[i].path < jobs[j].path })
	return jobs, nil
}

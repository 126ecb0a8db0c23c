package main

import (
	"fmt"

	"github.com/Veraticus/finpulse/internal/cli"
	"github.com/Veraticus/finpulse/internal/service"
	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded analyses",
		RunE:  runHistory,
	}

	cmd.Flags().String("customer", "", "only show analyses of this customer")
	cmd.Flags().Int("limit", 50, "maximum number of analyses to show")
	cmd.Flags().StringP("output", "o", "text", "output format (text, json, yaml)")
	cmd.Flags().Bool("customers", false, "list the distinct customer ids instead")

	return cmd
}

func runHistory(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	format, err := cli.ParseFormat(mustString(cmd, "output"))
	if err != nil {
		return err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer closeQuietly(store)

	if onlyCustomers, _ := cmd.Flags().GetBool("customers"); onlyCustomers {
		customers, err := store.DistinctCustomers(ctx)
		if err != nil {
			return err
		}
		for _, c := range customers {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), c); err != nil {
				return err
			}
		}
		return nil
	}

	limit, _ := cmd.Flags().GetInt("limit")
	records, err := store.ListAnalyses(ctx, service.AnalysisFilter{
		CustomerID: mustString(cmd, "customer"),
		Limit:      limit,
	})
	if err != nil {
		return err
	}

	return cli.RenderHistory(cmd.OutOrStdout(), records, format)
}

func statsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize recorded analyses",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			format, err := cli.ParseFormat(mustString(cmd, "output"))
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeQuietly(store)

			stats, err := store.GetStats(ctx)
			if err != nil {
				return err
			}
			return cli.RenderStats(cmd.OutOrStdout(), stats, format)
		},
	}

	cmd.Flags().StringP("output", "o", "text", "output format (text, json, yaml)")
	return cmd
}

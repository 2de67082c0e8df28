package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/hmesh/presale-dashboard/internal/domain/amount"
	"github.com/hmesh/presale-dashboard/internal/domain/claim"
	"github.com/hmesh/presale-dashboard/internal/mcp"
)

var (
	scheduleWallet  string
	scheduleRound   uint32
	scheduleChainID int64
	scheduleAt      int64
	scheduleJSON    bool
)

func newScheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Print a wallet's vesting schedule",
		Long:  "Print a wallet's vesting schedule for one round, or for every round it bought into when --round is omitted.",
		Args:  cobra.NoArgs,
		RunE:  runScheduleCmd,
	}
	cmd.Flags().StringVar(&scheduleWallet, "wallet", "", "wallet address")
	cmd.Flags().Uint32Var(&scheduleRound, "round", 0, "round id (default: all rounds)")
	cmd.Flags().Int64Var(&scheduleChainID, "chain", 0, "chain id (default from config)")
	cmd.Flags().Int64Var(&scheduleAt, "at", 0, "evaluate at this unix time instead of now")
	cmd.Flags().BoolVar(&scheduleJSON, "json", false, "print the API response as JSON")
	_ = cmd.MarkFlagRequired("wallet")
	return cmd
}

func runScheduleCmd(cmd *cobra.Command, _ []string) error {
	a, closeApp, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer closeApp()

	chainID := scheduleChainID
	if chainID == 0 {
		chainID = a.cfg.Presale.DefaultChainID
	}
	now := scheduleAt
	if now == 0 {
		now = time.Now().Unix()
	}
	out := cmd.OutOrStdout()

	if scheduleJSON {
		method := "get_claim_overview"
		var params any = mcp.ClaimOverviewParams{ChainID: chainID, Wallet: scheduleWallet, Now: now}
		if scheduleRound != 0 {
			method = "get_vesting_schedule"
			params = mcp.VestingScheduleParams{ChainID: chainID, Wallet: scheduleWallet, RoundID: scheduleRound, Now: now}
		}
		raw, err := json.Marshal(params)
		if err != nil {
			return err
		}
		result, err := a.handler().Handle(cmd.Context(), mcp.Identity{}, method, raw)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	if scheduleRound != 0 {
		sched, err := a.claims.Schedule(cmd.Context(), chainID, scheduleWallet, scheduleRound, now)
		if err != nil {
			return err
		}
		return printSchedule(out, sched)
	}

	overview, err := a.claims.Overview(cmd.Context(), chainID, scheduleWallet, now)
	if err != nil {
		return err
	}
	if len(overview.Schedules) == 0 {
		fmt.Fprintln(out, "no purchases found")
		return nil
	}
	for i := range overview.Schedules {
		if err := printSchedule(out, &overview.Schedules[i]); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}
	fmt.Fprintf(out, "all rounds: total %s, available %s, locked %s, claimed %s\n",
		amount.FormatTokens(overview.Totals.Total),
		amount.FormatTokens(overview.Totals.Available),
		amount.FormatTokens(overview.Totals.Locked),
		amount.FormatTokens(overview.Totals.Claimed),
	)
	return nil
}

func printSchedule(out io.Writer, s *claim.Schedule) error {
	fmt.Fprintf(out, "round %d: purchased %s\n", s.Purchase.RoundID, amount.FormatTokens(s.Purchase.Amount))

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TRANCHE\tUNLOCK\tAMOUNT\tSTATUS")
	for _, t := range s.Tranches {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			t.Label,
			time.Unix(t.UnlockTime, 0).UTC().Format(time.RFC3339),
			amount.FormatTokens(t.Amount),
			t.Status,
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "total %s, available %s, locked %s, claimed %s\n",
		amount.FormatTokens(s.Summary.Total),
		amount.FormatTokens(s.Summary.Available),
		amount.FormatTokens(s.Summary.Locked),
		amount.FormatTokens(s.Summary.Claimed),
	)
	for _, w := range s.Warnings {
		logErrf("warning: %s: %s\n", w.Code, w.Message)
	}
	return nil
}

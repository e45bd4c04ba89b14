package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/awmpietro/interbank-contagion/internal/app"
	"github.com/awmpietro/interbank-contagion/internal/contagion"
)

func newCascadeCmd(open opener) *cobra.Command {
	var trigger int
	var dot bool

	cmd := &cobra.Command{
		Use:   "cascade",
		Short: "Propagate one bank's failure with no bailout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd)
			if err != nil {
				return err
			}
			res, _, err := s.svc.Cascade(cmd.Context(), s.src, trigger)
			if err != nil {
				return err
			}
			return writeResult(cmd.OutOrStdout(), s.net, res, dot)
		},
	}
	cmd.Flags().IntVarP(&trigger, "trigger", "t", 0, "failing bank id")
	cmd.Flags().BoolVar(&dot, "dot", false, "print the network as DOT with failures highlighted")
	_ = cmd.MarkFlagRequired("trigger")
	return cmd
}

func newBailoutCmd(open opener) *cobra.Command {
	var (
		trigger int
		fund    float64
		dot     bool
		trace   bool
	)

	cmd := &cobra.Command{
		Use:   "bailout",
		Short: "Propagate a failure while a limited fund rescues the most important banks first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd)
			if err != nil {
				return err
			}
			res, rounds, _, err := s.svc.Bailout(cmd.Context(), s.src, trigger, fund, app.BailoutOptions{Trace: trace && !dot})
			if err != nil {
				return err
			}
			if err := writeResult(cmd.OutOrStdout(), s.net, res, dot); err != nil {
				return err
			}
			if rounds != nil {
				return writeTrace(cmd.OutOrStdout(), rounds)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&trigger, "trigger", "t", 0, "failing bank id")
	cmd.Flags().Float64VarP(&fund, "fund", "f", 0, "bailout fund limit")
	cmd.Flags().BoolVar(&dot, "dot", false, "print the network as DOT with failures highlighted")
	cmd.Flags().BoolVar(&trace, "trace", false, "print the per-round allocation trace")
	_ = cmd.MarkFlagRequired("trigger")
	return cmd
}

func newMinFundCmd(open opener) *cobra.Command {
	var step, maxFund float64

	cmd := &cobra.Command{
		Use:   "min-fund",
		Short: "Find the smallest fund that stops every single-bank failure from cascading",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd)
			if err != nil {
				return err
			}
			res, _, err := s.svc.MinimumFund(cmd.Context(), s.src, step, maxFund)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !res.Found {
				fmt.Fprintf(out, "no fund up to %s prevents every cascade (%d candidates tried)\n", money(res.MaxFund), res.Candidates)
				return nil
			}
			fmt.Fprintf(out, "minimum fund: %s (step %s, %d candidates tried)\n", money(res.Fund), money(res.Step), res.Candidates)
			return nil
		},
	}
	cmd.Flags().Float64Var(&step, "step", 1, "search granularity")
	cmd.Flags().Float64Var(&maxFund, "max-fund", 10_000, "largest fund to try")
	return cmd
}

func newPlanCmd(open opener) *cobra.Command {
	var (
		trigger int
		fund    float64
	)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Build a cost-effective bailout plan for one failing bank",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd)
			if err != nil {
				return err
			}
			plan, _, err := s.svc.Plan(cmd.Context(), s.src, trigger, fund)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			tw := table(out)
			fmt.Fprintln(tw, "STEP\tBANK\tNAME\tAMOUNT")
			for i, d := range plan.Steps {
				fmt.Fprintf(tw, "%d\t%d\t%s\t%s\n", i+1, d.Bank, bankName(s.net, d.Bank), money(d.Amount))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "\ndisbursed %s of %s, remaining %s\n", money(plan.Total()), money(plan.FundLimit), money(plan.RemainingFund))
			fmt.Fprintf(out, "still affected: %s\n", ids(plan.Affected))
			return nil
		},
	}
	cmd.Flags().IntVarP(&trigger, "trigger", "t", 0, "failing bank id")
	cmd.Flags().Float64VarP(&fund, "fund", "f", 0, "bailout fund limit")
	_ = cmd.MarkFlagRequired("trigger")
	return cmd
}

func newSweepCmd(open opener) *cobra.Command {
	var (
		fund   float64
		plain  bool
		filter string
	)

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Fail every (selected) bank in turn and report the damage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd)
			if err != nil {
				return err
			}
			report, _, err := s.svc.Sweep(cmd.Context(), s.src, contagion.SweepOptions{
				FundLimit: fund,
				Plain:     plain,
				Select:    filter,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			tw := table(out)
			fmt.Fprintln(tw, "TRIGGER\tNAME\tAFFECTED\tBANKS\tREMAINING")
			for _, r := range report.Rows {
				fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", r.Trigger, bankName(s.net, r.Trigger), r.AffectedCount, ids(r.Affected), money(r.RemainingFund))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			sum := report.Summary
			fmt.Fprintf(out, "\n%d of %d triggers cascade; affected mean %.2f, stddev %.2f, max %.0f\n",
				sum.Cascading, sum.Triggers, sum.MeanAffected, sum.StdDevAffected, sum.MaxAffected)
			return nil
		},
	}
	cmd.Flags().Float64VarP(&fund, "fund", "f", 0, "bailout fund limit per trigger")
	cmd.Flags().BoolVar(&plain, "plain", false, "use the plain cascade with no bailout")
	cmd.Flags().StringVar(&filter, "select", "", `trigger selector, e.g. "equity < 50 && out_degree > 0"`)
	return cmd
}

func newShockCmd(open opener) *cobra.Command {
	var trigger int

	cmd := &cobra.Command{
		Use:   "shock",
		Short: "Apply only the direct losses of one bank's failure",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd)
			if err != nil {
				return err
			}
			equity, _, err := s.svc.Shock(cmd.Context(), s.src, trigger)
			if err != nil {
				return err
			}

			var negative []int
			for _, id := range s.net.BankIDs() {
				if equity[id] < 0 {
					negative = append(negative, id)
				}
			}
			return writeEquity(cmd.OutOrStdout(), s.net, equity, negative)
		},
	}
	cmd.Flags().IntVarP(&trigger, "trigger", "t", 0, "failing bank id")
	_ = cmd.MarkFlagRequired("trigger")
	return cmd
}

func writeResult(out io.Writer, n *contagion.Network, res *contagion.CascadeResult, dot bool) error {
	if dot {
		rendered, err := contagion.RenderDOT(n, res)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, rendered)
		return err
	}

	fmt.Fprintf(out, "trigger %d (%s): %d affected [%s]\n", res.Trigger, bankName(n, res.Trigger), len(res.Affected), ids(res.Affected))
	if res.FundLimit > 0 {
		fmt.Fprintf(out, "fund used %s of %s, remaining %s\n", money(res.FundUsed()), money(res.FundLimit), money(res.RemainingFund))
	}
	fmt.Fprintln(out)
	return writeEquity(out, n, res.Equity, res.Affected)
}

func writeTrace(out io.Writer, trace *contagion.CascadeTrace) error {
	fmt.Fprintln(out)
	tw := table(out)
	fmt.Fprintln(tw, "ROUND\tBANK\tHIT\tIMPACT\tDRAWN\tCOMMITTED\tFAILED")
	for _, r := range trace.Rounds {
		for _, c := range r.Candidates {
			fmt.Fprintf(tw, "%d\t%d\t%s\t%d\t%s\t%s\t%t\n",
				r.Round, c.Bank, money(c.HypotheticalEquity), c.Impact, money(c.BailoutDrawn), money(c.CommittedEquity), c.Failed)
		}
	}
	return tw.Flush()
}

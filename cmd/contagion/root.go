package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/awmpietro/interbank-contagion/internal/app"
	"github.com/awmpietro/interbank-contagion/internal/contagion"
	"github.com/awmpietro/interbank-contagion/internal/contagion/cache"
	"github.com/awmpietro/interbank-contagion/internal/logging"
)

type rootOptions struct {
	network  string
	logLevel string
	workers  int
}

// session is what every subcommand runs against: the parsed source, the
// network built from it and the service.
type session struct {
	src app.NetworkSource
	net *contagion.Network
	svc *app.Service
}

type opener func(cmd *cobra.Command) (*session, error)

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          "contagion",
		Short:        "Simulate default cascades and bailouts in interbank exposure networks",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&opts.network, "network", "n", "", "network file (.dot, .gv, .yaml, .yml, .json)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	root.PersistentFlags().IntVar(&opts.workers, "workers", 4, "parallel trials for min-fund and sweep")
	_ = root.MarkPersistentFlagRequired("network")

	open := func(cmd *cobra.Command) (*session, error) {
		return openSession(opts, cmd.ErrOrStderr())
	}

	root.AddCommand(
		newCascadeCmd(open),
		newBailoutCmd(open),
		newMinFundCmd(open),
		newPlanCmd(open),
		newSweepCmd(open),
		newShockCmd(open),
	)
	return root
}

func openSession(opts *rootOptions, logOut io.Writer) (*session, error) {
	src, err := readSource(opts.network)
	if err != nil {
		return nil, err
	}
	n, err := buildNetwork(src)
	if err != nil {
		return nil, err
	}

	logger := logging.NewWithWriter(logging.Config{Level: opts.logLevel, Pretty: true}, logOut)
	alloc := contagion.NewAllocator(contagion.WithRoundObserver(contagion.NewRoundLogger(logger)))
	svc := app.NewService(
		contagion.NewLoader(),
		alloc,
		contagion.NewFundSearcher(alloc, contagion.WithWorkers(opts.workers)),
		contagion.NewPlanner(alloc),
		cache.NewInMemory(1),
		app.WithLogger(logger),
		app.WithSweepWorkers(opts.workers),
	)
	return &session{src: src, net: n, svc: svc}, nil
}

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func ids(list []int) string {
	if len(list) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(list))
	for _, id := range list {
		parts = append(parts, strconv.Itoa(id))
	}
	return strings.Join(parts, " ")
}

func bankName(n *contagion.Network, id int) string {
	if b, ok := n.Bank(id); ok && b.Name != "" {
		return b.Name
	}
	return "-"
}

// writeEquity lists final equities in network order, marking failed banks.
func writeEquity(w io.Writer, n *contagion.Network, equity map[int]float64, affected []int) error {
	failed := make(map[int]bool, len(affected))
	for _, id := range affected {
		failed[id] = true
	}

	tw := table(w)
	fmt.Fprintln(tw, "BANK\tNAME\tEQUITY\tFAILED")
	for _, id := range n.BankIDs() {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%t\n", id, bankName(n, id), money(equity[id]), failed[id])
	}
	return tw.Flush()
}

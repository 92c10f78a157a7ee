package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"lifeassistant/internal/api"
	"lifeassistant/internal/bank"
	"lifeassistant/internal/cli"
	"lifeassistant/internal/config"
	"lifeassistant/internal/finance"
	"lifeassistant/internal/log"
	"lifeassistant/internal/report"
	"lifeassistant/internal/session"
	"lifeassistant/internal/shipment"
	"lifeassistant/internal/worker"
)

const usage = `usage: assistant <command> [args]

commands:
  summary [month year]    monthly incomes/expenses/withdraw summary
  transactions            list transactions for the current window, grouped by kind
  banks                   list banks and balances
  shipments               list tracked shipments with latest status
  add-shipment <number>   start tracking a shipment
  pay <transaction-id>    confirm payment of a scheduled transaction
  watch                   keep refreshing all stores until interrupted
`

type app struct {
	cfg      *config.Config
	logger   *log.Logger
	session  *session.Session
	finance  *finance.Store
	banks    *bank.Store
	shipping *shipment.Store
}

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg := cli.LoadAndValidateConfig(logger)

	sess := session.New(logger)
	if err := sess.SignIn(session.Credential{UserID: cfg.UserID}); err != nil {
		logger.Error("Sign-in failed", log.FieldError, err.Error())
		fmt.Fprintln(os.Stderr, "set ASSISTANT_USER_ID to your user identifier")
		os.Exit(1)
	}

	client := api.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout, logger)
	snapshots := cli.InitSnapshots(logger, cfg)
	if snapshots != nil {
		defer snapshots.Close()
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		session:  sess,
		finance:  finance.NewStore(client, sess, snapshots, logger, cfg.SummaryCacheTTL),
		banks:    bank.NewStore(client, sess, logger),
		shipping: shipment.NewStore(client, sess, snapshots, logger),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var err error
	switch cmd := os.Args[1]; cmd {
	case "summary":
		err = a.runSummary(ctx, os.Args[2:])
	case "transactions":
		err = a.runTransactions(ctx)
	case "banks":
		err = a.runBanks(ctx)
	case "shipments":
		err = a.runShipments(ctx)
	case "add-shipment":
		err = a.runAddShipment(ctx, os.Args[2:])
	case "pay":
		err = a.runPay(ctx, os.Args[2:])
	case "watch":
		err = a.runWatch()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func (a *app) window(args []string) (month, year int, err error) {
	if len(args) == 0 {
		now := time.Now()
		return int(now.Month()), now.Year(), nil
	}
	if len(args) != 2 {
		return 0, 0, fmt.Errorf("expected no arguments or <month> <year>")
	}
	if _, err := fmt.Sscanf(args[0], "%d", &month); err != nil || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("invalid month %q", args[0])
	}
	if _, err := fmt.Sscanf(args[1], "%d", &year); err != nil || year < 2000 {
		return 0, 0, fmt.Errorf("invalid year %q", args[1])
	}
	return month, year, nil
}

func (a *app) runSummary(ctx context.Context, args []string) error {
	month, year, err := a.window(args)
	if err != nil {
		return err
	}
	if err := a.finance.FetchWithdraw(ctx, month, year); err != nil {
		return err
	}
	s, ok := a.finance.Summary()
	if !ok {
		return fmt.Errorf("no summary available for %d/%d", month, year)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "window\t%d/%d\n", month, year)
	fmt.Fprintf(w, "incomes\t%.2f\n", s.Incomes)
	fmt.Fprintf(w, "expenses\t%.2f\n", s.Expenses)
	fmt.Fprintf(w, "withdraw\t%.2f\n", s.Withdraw)
	fmt.Fprintf(w, "scheduled incomes\t%.2f\n", s.ScheduledIncomes)
	fmt.Fprintf(w, "scheduled expenses\t%.2f\n", s.ScheduledExpenses)
	return w.Flush()
}

// offline falls back to the snapshot store when the backend is unreachable.
// Any other failure class still surfaces.
func (a *app) offline(ctx context.Context, fetchErr error, load func(context.Context) error) error {
	if !errors.Is(fetchErr, api.ErrTransport) {
		return fetchErr
	}
	if err := load(ctx); err != nil {
		return fetchErr
	}
	fmt.Println("backend unreachable, showing last snapshot")
	return nil
}

func (a *app) runTransactions(ctx context.Context) error {
	now := time.Now()
	if err := a.finance.FetchAll(ctx, int(now.Month()), now.Year()); err != nil {
		if err = a.offline(ctx, err, a.finance.LoadSnapshot); err != nil {
			return err
		}
	}
	groups := report.GroupByKind(a.finance.Transactions())
	if len(groups) == 0 {
		fmt.Println("no transactions in the current window")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, g := range groups {
		fmt.Fprintf(w, "%s\t%+.2f\n", g.Kind, float64(g.TotalCents)/100)
		for _, t := range g.Transactions {
			mark := " "
			if t.IsInstallment && !t.IsPaid {
				mark = "*"
			}
			fmt.Fprintf(w, "  %s %s\t%+.2f\t%s\n", mark, t.Name, t.Value.Major(), t.ID)
		}
	}
	return w.Flush()
}

func (a *app) runBanks(ctx context.Context) error {
	banks := a.banks.Banks
	if err := a.banks.FetchUserBanks(ctx); err != nil {
		// The finance store owns the bank snapshot.
		if err = a.offline(ctx, err, a.finance.LoadSnapshot); err != nil {
			return err
		}
		banks = a.finance.Banks
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, b := range banks() {
		fmt.Fprintf(w, "%s\t%.2f\t%s\n", b.Name, b.Balance.Major(), b.ID)
	}
	return w.Flush()
}

func (a *app) runShipments(ctx context.Context) error {
	if err := a.shipping.FetchUserShipments(ctx); err != nil {
		if err = a.offline(ctx, err, a.shipping.LoadSnapshot); err != nil {
			return err
		}
	}
	shipments := a.shipping.Shipments()
	if len(shipments) == 0 {
		fmt.Println("no tracked shipments")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, sh := range shipments {
		status := sh.LatestStatus()
		if status == "" {
			status = "(no tracking data yet)"
		}
		fmt.Fprintf(w, "%s\t%s\n", sh.ShipmentNumber, status)
	}
	return w.Flush()
}

func (a *app) runAddShipment(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected exactly one tracking number")
	}
	if err := a.shipping.CreateShipment(ctx, args[0]); err != nil {
		return err
	}
	fmt.Printf("tracking %s\n", args[0])
	return nil
}

func (a *app) runPay(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected exactly one transaction id")
	}
	if err := a.finance.ConfirmPay(ctx, args[0]); err != nil {
		return err
	}
	fmt.Printf("paid %s\n", args[0])
	return nil
}

func (a *app) runWatch() error {
	now := time.Now()
	refresh := worker.NewRefreshWorker(a.cfg.RefreshInterval, a.logger,
		worker.RefreshFunc{Label: "finance", Fn: func(ctx context.Context) error {
			return a.finance.FetchAll(ctx, int(now.Month()), now.Year())
		}},
		worker.RefreshFunc{Label: "shipments", Fn: func(ctx context.Context) error {
			return a.shipping.FetchUserShipments(ctx)
		}},
	)

	a.finance.SetOnChange(func() { a.printWatchLine() })
	a.shipping.SetOnChange(func() { a.printWatchLine() })

	ctx, done := cli.GracefulShutdown(a.logger, 10*time.Second, func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := refresh.Stop(stopCtx); err != nil {
			a.logger.Warn("Refresh worker did not stop cleanly", log.FieldError, err.Error())
		}
	})

	if err := refresh.Start(ctx); err != nil {
		return err
	}
	cli.WaitForShutdown(ctx, done)
	return nil
}

func (a *app) printWatchLine() {
	txs := a.finance.Transactions()
	shipments := a.shipping.Shipments()
	total := report.SignedTotal(txs)
	fmt.Printf("[%s] %d transactions (net %+.2f), %d shipments\n",
		time.Now().Format(time.TimeOnly), len(txs), float64(total)/100, len(shipments))
	for _, sh := range shipments {
		if st := sh.LatestStatus(); st != "" {
			fmt.Printf("  %s: %s\n", sh.ShipmentNumber, st)
		}
	}
}

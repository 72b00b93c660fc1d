// Command storectl runs maintenance and reporting tasks directly against the store
// database.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/fekuna/omnipos-store-service/config"
	"github.com/fekuna/omnipos-store-service/internal/dashboard"
	"github.com/fekuna/omnipos-store-service/internal/model"
	"github.com/fekuna/omnipos-store-service/internal/pkg/clock"
	"github.com/fekuna/omnipos-store-service/internal/pkg/database/postgres"
	"github.com/fekuna/omnipos-store-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-store-service/internal/report"
	"github.com/fekuna/omnipos-store-service/internal/store"
	pgstore "github.com/fekuna/omnipos-store-service/internal/store/postgres"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

const dateTimeLayout = "2006-01-02 15:04"

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

type app struct {
	cfg *config.Config
	out io.Writer
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out}
	root := &cobra.Command{
		Use:           "storectl",
		Short:         "Operate the store database",
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.cfg = config.LoadEnv()
		},
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply the database schema",
			Args:  cobra.NoArgs,
			RunE:  a.withStore(a.migrate),
		},
		&cobra.Command{
			Use:   "low-stock",
			Short: "List products at or below their alert limit",
			Args:  cobra.NoArgs,
			RunE:  a.withStore(a.lowStock),
		},
		&cobra.Command{
			Use:   "pending-orders",
			Short: "List restock orders not yet received",
			Args:  cobra.NoArgs,
			RunE:  a.withStore(a.pendingOrders),
		},
		&cobra.Command{
			Use:       "report [day|week]",
			Short:     "Print sales grouped by category and product",
			Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
			ValidArgs: []string{string(report.PeriodDay), string(report.PeriodWeek)},
			RunE:      a.withStore(a.salesReport),
		},
		&cobra.Command{
			Use:   "summary",
			Short: "Print the dashboard figures",
			Args:  cobra.NoArgs,
			RunE:  a.withStore(a.summary),
		},
	)
	return root
}

type storeRunE func(ctx context.Context, s *pgstore.Store, args []string) error

func (a *app) withStore(fn storeRunE) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		db, err := postgres.NewPostgres(&postgres.Config{
			Host:            a.cfg.Postgres.Host,
			Port:            a.cfg.Postgres.Port,
			User:            a.cfg.Postgres.User,
			Password:        a.cfg.Postgres.Password,
			DBName:          a.cfg.Postgres.DBName,
			SSLMode:         a.cfg.Postgres.SSLMode,
			MaxOpenConns:    2,
			MaxIdleConns:    1,
			ConnMaxLifetime: time.Minute,
			ConnMaxIdleTime: time.Minute,
		})
		if err != nil {
			return err
		}
		s := pgstore.NewStore(db, logger.NewNop())
		defer s.Close()
		return fn(cmd.Context(), s, args)
	}
}

func (a *app) now() (time.Time, error) {
	loc, err := a.cfg.Server.Location()
	if err != nil {
		return time.Time{}, err
	}
	return clock.Local(loc).Now(), nil
}

func (a *app) migrate(ctx context.Context, s *pgstore.Store, _ []string) error {
	if err := s.Migrate(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "schema up to date")
	return nil
}

func (a *app) lowStock(ctx context.Context, s *pgstore.Store, _ []string) error {
	products, err := store.NewCollection[model.Product](s, store.Products).List(ctx)
	if err != nil {
		return err
	}
	categories, err := store.NewCollection[model.Category](s, store.Categories).List(ctx)
	if err != nil {
		return err
	}

	t := a.table()
	t.AppendHeader(table.Row{"Product", "Category", "Stock", "Alert limit"})
	low := report.LowStock(products)
	for _, p := range low {
		t.AppendRow(table.Row{p.Name, report.CategoryName(categories, p.CategoryID), p.Quantity, p.AlertLimit})
	}
	t.AppendFooter(table.Row{"", "", "", strconv.Itoa(len(low)) + " low"})
	t.Render()
	return nil
}

func (a *app) pendingOrders(ctx context.Context, s *pgstore.Store, _ []string) error {
	orders, err := store.NewCollection[model.Order](s, store.Orders).List(ctx)
	if err != nil {
		return err
	}
	pending, _ := report.SplitOrders(orders)

	t := a.table()
	t.AppendHeader(table.Row{"Order", "Created", "Product", "Quantity"})
	for _, o := range pending {
		for _, item := range o.Items {
			t.AppendRow(table.Row{o.ID, o.CreatedAt.Format(dateTimeLayout), item.ProductName, item.Quantity})
		}
	}
	t.AppendFooter(table.Row{"", "", "Pending", len(pending)})
	t.Render()
	return nil
}

func (a *app) salesReport(ctx context.Context, s *pgstore.Store, args []string) error {
	period := report.PeriodDay
	if len(args) == 1 {
		period = report.Period(args[0])
	}
	now, err := a.now()
	if err != nil {
		return err
	}
	rep, err := dashboard.LoadSalesReport(ctx, s, period, now)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Sales %s to %s\n", rep.Window.From.Format(dateTimeLayout), rep.Window.To.Format(dateTimeLayout))
	t := a.table()
	t.AppendHeader(table.Row{"Category", "Product", "Quantity", "Unit price", "Amount"})
	for _, c := range rep.Categories {
		for _, p := range c.Products {
			t.AppendRow(table.Row{c.CategoryName, p.ProductName, p.TotalQuantity, report.FormatCurrency(p.UnitPrice), report.FormatCurrency(p.TotalAmount)})
		}
		t.AppendRow(table.Row{c.CategoryName, "Subtotal", "", "", report.FormatCurrency(c.Total)})
		t.AppendSeparator()
	}
	t.AppendFooter(table.Row{"", "", "", "Total", report.FormatCurrency(rep.Total)})
	t.Render()
	return nil
}

func (a *app) summary(ctx context.Context, s *pgstore.Store, _ []string) error {
	now, err := a.now()
	if err != nil {
		return err
	}
	sum, err := dashboard.LoadSummary(ctx, s, now)
	if err != nil {
		return err
	}

	t := a.table()
	t.AppendHeader(table.Row{"Figure", "Value"})
	t.AppendRows([]table.Row{
		{"Low stock products", sum.LowStockCount},
		{"Pending orders", sum.PendingOrders},
		{"Sales today", fmt.Sprintf("%d (%s)", sum.TodaySales, report.FormatCurrency(sum.TodayTotal))},
		{"Sales this week", fmt.Sprintf("%d (%s)", sum.WeekSales, report.FormatCurrency(sum.WeekTotal))},
		{"Bottles on loan", sum.OutstandingLoans},
		{"Guarantee held", report.FormatCurrency(sum.TotalGuarantee)},
	})
	t.Render()
	return nil
}

func (a *app) table() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(a.out)
	t.SetStyle(table.StyleLight)
	return t
}

package dashboard

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-store-service/internal/model"
	"github.com/fekuna/omnipos-store-service/internal/report"
	"github.com/fekuna/omnipos-store-service/internal/store"
)

// LoadSalesReport reads sales and categories once and groups the period's sales.
func LoadSalesReport(ctx context.Context, s store.Store, period report.Period, now time.Time) (report.SalesReport, error) {
	sales, err := store.NewCollection[model.Sale](s, store.Sales).List(ctx)
	if err != nil {
		return report.SalesReport{}, err
	}
	cats, err := store.NewCollection[model.Category](s, store.Categories).List(ctx)
	if err != nil {
		return report.SalesReport{}, err
	}
	return report.BuildSalesReport(period, sales, cats, now), nil
}

// LoadSummary computes the summary from a one-off read of every collection.
func LoadSummary(ctx context.Context, s store.Store, now time.Time) (report.Summary, error) {
	products, err := store.NewCollection[model.Product](s, store.Products).List(ctx)
	if err != nil {
		return report.Summary{}, err
	}
	sales, err := store.NewCollection[model.Sale](s, store.Sales).List(ctx)
	if err != nil {
		return report.Summary{}, err
	}
	orders, err := store.NewCollection[model.Order](s, store.Orders).List(ctx)
	if err != nil {
		return report.Summary{}, err
	}
	loans, err := store.NewCollection[model.BottleLoan](s, store.BottleLoans).List(ctx)
	if err != nil {
		return report.Summary{}, err
	}
	return report.Summarize(products, sales, orders, loans, now), nil
}

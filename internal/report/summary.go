package report

import (
	"time"

	"github.com/fekuna/omnipos-store-service/internal/model"
	"github.com/shopspring/decimal"
)

// Summary is the home-screen view derived from the five collections.
type Summary struct {
	LowStock         []model.Product `json:"lowStock"`
	LowStockCount    int             `json:"lowStockCount"`
	PendingOrders    int             `json:"pendingOrders"`
	TodaySales       int             `json:"todaySales"`
	TodayTotal       decimal.Decimal `json:"todayTotal"`
	WeekSales        int             `json:"weekSales"`
	WeekTotal        decimal.Decimal `json:"weekTotal"`
	OutstandingLoans int             `json:"outstandingLoans"`
	TotalGuarantee   decimal.Decimal `json:"totalGuarantee"`
	GeneratedAt      time.Time       `json:"generatedAt"`
}

func Summarize(products []model.Product, sales []model.Sale, orders []model.Order, loans []model.BottleLoan, now time.Time) Summary {
	low := LowStock(products)
	today := Today(sales, now)
	week := ThisWeek(sales, now)

	return Summary{
		LowStock:         low,
		LowStockCount:    len(low),
		PendingOrders:    PendingCount(orders),
		TodaySales:       len(today),
		TodayTotal:       SumTotals(today),
		WeekSales:        len(week),
		WeekTotal:        SumTotals(week),
		OutstandingLoans: len(loans),
		TotalGuarantee:   TotalGuarantee(loans),
		GeneratedAt:      now,
	}
}

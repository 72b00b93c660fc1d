// Package report holds the read-side aggregations. Every function is a pure function of
// a snapshot and the caller's clock; nothing is cached or persisted.
package report

import (
	"fmt"
	"time"

	"github.com/fekuna/omnipos-store-service/internal/model"
	"github.com/shopspring/decimal"
)

// Uncategorized names products and sales whose category no longer exists.
const Uncategorized = "Sin categoría"

// LowStock returns the products whose quantity is at or below their alert limit.
func LowStock(products []model.Product) []model.Product {
	out := make([]model.Product, 0)
	for i := range products {
		if products[i].IsLowStock() {
			out = append(out, products[i])
		}
	}
	return out
}

func SalesIn(sales []model.Sale, w Window) []model.Sale {
	out := make([]model.Sale, 0)
	for _, s := range sales {
		if w.Contains(s.CreatedAt) {
			out = append(out, s)
		}
	}
	return out
}

// Today returns the sales created since local midnight.
func Today(sales []model.Sale, now time.Time) []model.Sale {
	return SalesIn(sales, DayWindow(now))
}

// ThisWeek returns the sales inside the Monday to Sunday week containing now.
func ThisWeek(sales []model.Sale, now time.Time) []model.Sale {
	return SalesIn(sales, WeekWindow(now))
}

func PendingCount(orders []model.Order) int {
	n := 0
	for i := range orders {
		if orders[i].IsPending() {
			n++
		}
	}
	return n
}

func SplitOrders(orders []model.Order) (pending, received []model.Order) {
	pending = make([]model.Order, 0)
	received = make([]model.Order, 0)
	for _, o := range orders {
		if o.IsPending() {
			pending = append(pending, o)
		} else {
			received = append(received, o)
		}
	}
	return pending, received
}

func SumTotals(sales []model.Sale) decimal.Decimal {
	sum := decimal.Zero
	for _, s := range sales {
		sum = sum.Add(s.Total)
	}
	return sum
}

func TotalGuarantee(loans []model.BottleLoan) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range loans {
		sum = sum.Add(l.GuaranteeAmount)
	}
	return sum
}

// CategoryName resolves a weak category reference.
func CategoryName(categories []model.Category, id string) string {
	for _, c := range categories {
		if c.ID == id {
			return c.Name
		}
	}
	return Uncategorized
}

func FormatCurrency(amount decimal.Decimal) string {
	return fmt.Sprintf("Bs. %s", amount.StringFixed(2))
}

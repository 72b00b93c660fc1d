package report

import (
	"time"

	"github.com/fekuna/omnipos-store-service/internal/model"
	"github.com/shopspring/decimal"
)

type Period string

const (
	PeriodDay  Period = "day"
	PeriodWeek Period = "week"
)

func (p Period) Window(now time.Time) Window {
	if p == PeriodWeek {
		return WeekWindow(now)
	}
	return DayWindow(now)
}

type ProductSummary struct {
	ProductID     string          `json:"productId"`
	ProductName   string          `json:"productName"`
	TotalQuantity int64           `json:"totalQuantity"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
}

type CategorySales struct {
	CategoryID   string           `json:"categoryId"`
	CategoryName string           `json:"categoryName"`
	Products     []ProductSummary `json:"products"`
	Total        decimal.Decimal  `json:"total"`
}

type SalesReport struct {
	Period     Period          `json:"period"`
	Window     Window          `json:"window"`
	Categories []CategorySales `json:"categories"`
	Total      decimal.Decimal `json:"total"`
}

// BuildSalesReport groups the period's sales by category, then by product. Categories
// keep the order of the categories snapshot; sales whose category is gone are grouped
// last under Uncategorized. Products with no net quantity are left out, as are empty
// categories. The unit price shown is the one of the first sale seen for the product.
func BuildSalesReport(period Period, sales []model.Sale, categories []model.Category, now time.Time) SalesReport {
	window := period.Window(now)
	inPeriod := SalesIn(sales, window)

	known := make(map[string]bool, len(categories))
	for _, c := range categories {
		known[c.ID] = true
	}

	byCategory := make(map[string][]model.Sale)
	var orphaned []model.Sale
	for _, s := range inPeriod {
		if known[s.CategoryID] {
			byCategory[s.CategoryID] = append(byCategory[s.CategoryID], s)
		} else {
			orphaned = append(orphaned, s)
		}
	}

	rep := SalesReport{Period: period, Window: window, Categories: []CategorySales{}, Total: decimal.Zero}
	add := func(id, name string, group []model.Sale) {
		products := groupByProduct(group)
		if len(products) == 0 {
			return
		}
		total := decimal.Zero
		for _, p := range products {
			total = total.Add(p.TotalAmount)
		}
		rep.Categories = append(rep.Categories, CategorySales{
			CategoryID:   id,
			CategoryName: name,
			Products:     products,
			Total:        total,
		})
		rep.Total = rep.Total.Add(total)
	}

	for _, c := range categories {
		add(c.ID, c.Name, byCategory[c.ID])
	}
	add("", Uncategorized, orphaned)

	return rep
}

func groupByProduct(sales []model.Sale) []ProductSummary {
	index := make(map[string]int)
	summaries := make([]ProductSummary, 0)
	for _, s := range sales {
		if i, ok := index[s.ProductID]; ok {
			summaries[i].TotalQuantity += s.Quantity
			summaries[i].TotalAmount = summaries[i].TotalAmount.Add(s.Total)
			continue
		}
		index[s.ProductID] = len(summaries)
		summaries = append(summaries, ProductSummary{
			ProductID:     s.ProductID,
			ProductName:   s.ProductName,
			TotalQuantity: s.Quantity,
			UnitPrice:     s.UnitPrice,
			TotalAmount:   s.Total,
		})
	}

	out := summaries[:0]
	for _, p := range summaries {
		if p.TotalQuantity > 0 {
			out = append(out, p)
		}
	}
	return out
}

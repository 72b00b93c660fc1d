package model

import "time"

type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "pending"
	OrderStatusReceived OrderStatus = "received"
)

type OrderItem struct {
	ProductID    string `json:"productId"`
	ProductName  string `json:"productName"`
	Quantity     int64  `json:"quantity"`
	CurrentStock int64  `json:"currentStock"` // stock when the order was placed, reference only
}

type Order struct {
	BaseModel
	Items      []OrderItem `json:"items"`
	Notes      string      `json:"notes"`
	Status     OrderStatus `json:"status"`
	ReceivedAt *time.Time  `json:"receivedAt,omitempty"`
}

func (o *Order) IsPending() bool {
	return o.Status == OrderStatusPending
}

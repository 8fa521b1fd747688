package models

// Stats defines the dashboard counters.
type Stats struct {
	TotalProducts    int64 `json:"total_products"`
	TotalOrders      int64 `json:"total_orders"`
	TotalUsers       int64 `json:"total_users"`
	PendingOrders    int64 `json:"pending_orders"`
	DeliveredRevenue int64 `json:"delivered_revenue"`
}

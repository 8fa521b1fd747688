package models

import "time"

// WeeklySales is delivered revenue for one ISO week.
type WeeklySales struct {
	Week    string    `json:"week"`
	Start   time.Time `json:"start"`
	Revenue int64     `json:"revenue"`
}

// StatusCount is how many orders are in one status.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// CategoryRevenue is delivered revenue attributed to one category.
type CategoryRevenue struct {
	Category string `json:"category"`
	Name     string `json:"name"`
	Revenue  int64  `json:"revenue"`
}

// Report defines the admin sales report.
type Report struct {
	TotalRevenue      int64             `json:"totalRevenue"`
	WeeklySales       []WeeklySales     `json:"weeklySales"`
	OrderStatusCounts []StatusCount     `json:"orderStatusCounts"`
	CategoryRevenue   []CategoryRevenue `json:"categoryRevenue"`
	Insights          string            `json:"insights,omitempty"`
	InsightPoints     []string          `json:"insightPoints,omitempty"`
	GeneratedAt       time.Time         `json:"generatedAt"`
}

package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"shaaban-furniture-backend/access"
	"shaaban-furniture-backend/ai"
	"shaaban-furniture-backend/models"
)

const reportWeeks = 8

type ReportService struct {
	orders    *OrderService
	products  *ProductService
	catalog   models.Catalog
	assistant *ai.Assistant
	logger    *log.Logger
	now       clock
}

func NewReportService(orders *OrderService, products *ProductService, catalog models.Catalog, assistant *ai.Assistant, logger *log.Logger) *ReportService {
	if logger == nil {
		logger = log.Default()
	}
	return &ReportService{orders: orders, products: products, catalog: catalog, assistant: assistant, logger: logger, now: time.Now}
}

// Build loads orders and products together and summarizes them, adding
// model insights when there is anything to analyze. Admin only.
func (s *ReportService) Build(ctx context.Context, sess access.Session) (models.Report, error) {
	if err := requireAdmin(sess); err != nil {
		return models.Report{}, err
	}
	var (
		orders   []models.Order
		products []models.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		orders, err = s.orders.List(gctx, sess)
		return err
	})
	g.Go(func() (err error) {
		products, err = s.products.List(gctx, ProductFilter{})
		return err
	})
	if err := g.Wait(); err != nil {
		return models.Report{}, fmt.Errorf("build report: %w", err)
	}

	report := Summarize(orders, products, s.catalog.Categories, s.now())
	if len(orders) > 0 && s.assistant != nil {
		report.Insights, report.InsightPoints = s.assistant.Insights(ctx, report)
	}
	return report, nil
}

// weekStart is the Monday 00:00 of t's ISO week, in t's location.
func weekStart(t time.Time) time.Time {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// Summarize computes the report tables. Only Delivered orders count toward
// revenue; the weekly table covers the 8 ISO weeks up to now, oldest first.
func Summarize(orders []models.Order, products []models.Product, categories []models.Category, now time.Time) models.Report {
	r := models.Report{GeneratedAt: now}

	current := weekStart(now)
	weeks := make([]models.WeeklySales, reportWeeks)
	index := make(map[int64]int, reportWeeks)
	for i := range weeks {
		start := current.AddDate(0, 0, -7*(reportWeeks-1-i))
		weeks[i] = models.WeeklySales{Week: start.Format("Jan 2"), Start: start}
		index[start.Unix()] = i
	}

	productCategory := make(map[string]string, len(products))
	for _, p := range products {
		productCategory[p.ID] = p.Category
	}
	byCategory := make(map[string]int64)
	statusCounts := make(map[string]int)

	for _, o := range orders {
		statusCounts[strings.ToLower(string(o.Status))]++
		if o.Status != models.StatusDelivered {
			continue
		}
		r.TotalRevenue += o.Total
		if i, ok := index[weekStart(o.CreatedAt.In(now.Location())).Unix()]; ok {
			weeks[i].Revenue += o.Total
		}
		for _, it := range o.Items {
			if cat, ok := productCategory[it.ProductID]; ok {
				byCategory[cat] += it.Price * int64(it.Quantity)
			}
		}
	}
	r.WeeklySales = weeks

	r.OrderStatusCounts = make([]models.StatusCount, 0, len(statusCounts))
	for status, n := range statusCounts {
		r.OrderStatusCounts = append(r.OrderStatusCounts, models.StatusCount{Status: status, Count: n})
	}
	sort.Slice(r.OrderStatusCounts, func(i, j int) bool {
		return r.OrderStatusCounts[i].Status < r.OrderStatusCounts[j].Status
	})

	r.CategoryRevenue = []models.CategoryRevenue{}
	for _, c := range categories {
		if rev := byCategory[c.ID]; rev > 0 {
			r.CategoryRevenue = append(r.CategoryRevenue, models.CategoryRevenue{Category: c.ID, Name: c.Name, Revenue: rev})
		}
	}
	return r
}

// ExportXLSX writes the report tables as a workbook with one sheet each.
func ExportXLSX(r models.Report, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	sheets := []struct {
		name   string
		header []any
		rows   [][]any
	}{
		{name: "Weekly Sales", header: []any{"Week", "Revenue (TZS)"}},
		{name: "Order Status", header: []any{"Status", "Orders"}},
		{name: "Revenue by Category", header: []any{"Category", "Revenue (TZS)"}},
	}
	for _, ws := range r.WeeklySales {
		sheets[0].rows = append(sheets[0].rows, []any{ws.Week, ws.Revenue})
	}
	for _, sc := range r.OrderStatusCounts {
		sheets[1].rows = append(sheets[1].rows, []any{sc.Status, sc.Count})
	}
	for _, cr := range r.CategoryRevenue {
		sheets[2].rows = append(sheets[2].rows, []any{cr.Name, cr.Revenue})
	}
	sheets[0].rows = append(sheets[0].rows, []any{"Total delivered revenue", r.TotalRevenue})

	for i, sh := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sh.name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(sh.name); err != nil {
			return err
		}
		if err := f.SetSheetRow(sh.name, "A1", &sh.header); err != nil {
			return err
		}
		for j, row := range sh.rows {
			cell, err := excelize.CoordinatesToCellName(1, j+2)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(sh.name, cell, &row); err != nil {
				return err
			}
		}
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

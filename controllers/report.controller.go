package controllers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shaaban-furniture-backend/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// GetReport builds the sales report with model insights. Admin only.
func (ctrl *Controller) GetReport(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	report, err := ctrl.Reports.Build(ctx, session(c))
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report})
}

// ExportReport downloads the report tables as a spreadsheet.
func (ctrl *Controller) ExportReport(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	report, err := ctrl.Reports.Build(ctx, session(c))
	if err != nil {
		ctrl.respondError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := services.ExportXLSX(report, &buf); err != nil {
		ctrl.respondError(c, err)
		return
	}
	name := fmt.Sprintf("sales-report-%s.xlsx", report.GeneratedAt.Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

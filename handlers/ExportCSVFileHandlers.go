package handlers

import (
	"argocrm/models"
	"argocrm/repository"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

// exportRowCap bounds export size; the filter shape matches the list view,
// so narrowing filters is the way to export large accounts in slices.
const exportRowCap = 10000

var quoteExportHeader = []string{
	"reference number", "date", "client", "supplier", "project",
	"currency", "value", "fx rate", "value aed", "outcome",
	"delivery date", "sales person", "notes",
}

func fetchQuotesForExport(db *gorm.DB, p repository.ListParams) ([]models.QuoteGorm, error) {
	p = p.WithoutPagination()
	tx := repository.ApplySort(quoteBaseQuery(db, p), p.Sort, quoteSortColumns, "")
	for _, preload := range quotePreloads {
		tx = tx.Preload(preload)
	}

	var quotes []models.QuoteGorm
	err := tx.Limit(exportRowCap).Find(&quotes).Error
	return quotes, err
}

func quoteExportRow(q models.QuoteGorm) []string {
	name := func(c *models.CompanyGorm) string {
		if c == nil {
			return ""
		}
		return c.Name
	}
	person := func(p *models.PersonGorm) string {
		if p == nil {
			return ""
		}
		return p.Name
	}
	deliveryDate := ""
	if q.DeliveryDate != nil {
		deliveryDate = q.DeliveryDate.Format("2006-01-02")
	}
	notes := ""
	if q.Notes != nil {
		notes = *q.Notes
	}
	projectName := ""
	if q.Project != nil {
		projectName = q.Project.Name
	}

	return []string{
		q.ReferenceNumber,
		q.Date.Format("2006-01-02"),
		name(q.Client),
		name(q.Supplier),
		projectName,
		q.Currency,
		strconv.FormatFloat(q.Value, 'f', 2, 64),
		strconv.FormatFloat(q.FxRate, 'f', 4, 64),
		strconv.FormatFloat(q.Value*q.FxRate, 'f', 2, 64),
		q.Outcome,
		deliveryDate,
		person(q.SalesPerson),
		notes,
	}
}

// ExportQuotesCSV godoc
// @Summary Export quotes as CSV
// @Description Export quotes under the list's filter shape (pagination ignored), capped at 10000 rows
// @Tags Export
// @Produce text/csv
// @Success 200 {file} file "CSV file"
// @Failure 500 {object} models.ErrorResponse
// @Router /api/export/quotes.csv [get]
func ExportQuotesCSV(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := repository.ParseListParams(c.Request.URL.Query(), quoteFilterKeys)

		quotes, err := fetchQuotesForExport(db, p)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch quotes", "details": err.Error()})
			return
		}

		c.Header("Content-Type", "text/csv")
		c.Header("Content-Disposition", fmt.Sprintf("attachment;filename=quotes_%s.csv", time.Now().Format("20060102")))

		titleCaser := cases.Title(language.Und)
		header := make([]string, len(quoteExportHeader))
		for i, h := range quoteExportHeader {
			header[i] = titleCaser.String(h)
		}

		writer := csv.NewWriter(c.Writer)
		defer writer.Flush()

		if err := writer.Write(header); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error writing CSV header"})
			return
		}
		for _, q := range quotes {
			if err := writer.Write(quoteExportRow(q)); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error writing CSV row"})
				return
			}
		}
	}
}

// ExportQuotesXLSX godoc
// @Summary Export quotes as XLSX
// @Description Export quotes under the list's filter shape (pagination ignored), capped at 10000 rows
// @Tags Export
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file "XLSX file"
// @Failure 500 {object} models.ErrorResponse
// @Router /api/export/quotes.xlsx [get]
func ExportQuotesXLSX(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := repository.ParseListParams(c.Request.URL.Query(), quoteFilterKeys)

		quotes, err := fetchQuotesForExport(db, p)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch quotes", "details": err.Error()})
			return
		}

		f := excelize.NewFile()
		defer f.Close()

		sheet := "Quotes"
		f.SetSheetName("Sheet1", sheet)

		titleCaser := cases.Title(language.Und)
		for i, h := range quoteExportHeader {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			f.SetCellValue(sheet, cell, titleCaser.String(h))
		}

		headerStyle, _ := f.NewStyle(&excelize.Style{
			Font: &excelize.Font{Bold: true},
		})
		endCol, _ := excelize.CoordinatesToCellName(len(quoteExportHeader), 1)
		f.SetCellStyle(sheet, "A1", endCol, headerStyle)

		for rowIdx, q := range quotes {
			row := quoteExportRow(q)
			for colIdx, val := range row {
				cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
				f.SetCellValue(sheet, cell, val)
			}
		}

		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", fmt.Sprintf("attachment;filename=quotes_%s.xlsx", time.Now().Format("20060102")))

		if err := f.Write(c.Writer); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write XLSX", "details": err.Error()})
			return
		}
	}
}

// ExportRfqsCSV godoc
// @Summary Export RFQs as CSV
// @Description Export RFQs under the list's filter shape (pagination ignored), capped at 10000 rows
// @Tags Export
// @Produce text/csv
// @Success 200 {file} file "CSV file"
// @Failure 500 {object} models.ErrorResponse
// @Router /api/export/rfqs.csv [get]
func ExportRfqsCSV(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := repository.ParseListParams(c.Request.URL.Query(), rfqFilterKeys).WithoutPagination()

		tx := repository.ApplySort(rfqBaseQuery(db, p), p.Sort, rfqSortColumns, "")
		for _, preload := range rfqPreloads {
			tx = tx.Preload(preload)
		}

		var rfqs []models.RfqGorm
		if err := tx.Limit(exportRowCap).Find(&rfqs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch RFQs", "details": err.Error()})
			return
		}

		c.Header("Content-Type", "text/csv")
		c.Header("Content-Disposition", fmt.Sprintf("attachment;filename=rfqs_%s.csv", time.Now().Format("20060102")))

		writer := csv.NewWriter(c.Writer)
		defer writer.Flush()

		titleCaser := cases.Title(language.Und)
		header := []string{"reference number", "date", "status", "supplier", "project", "quote", "received date", "received value", "received currency"}
		for i, h := range header {
			header[i] = titleCaser.String(h)
		}
		if err := writer.Write(header); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error writing CSV header"})
			return
		}

		for _, r := range rfqs {
			supplier := ""
			if r.Supplier != nil {
				supplier = r.Supplier.Name
			}
			project := ""
			if r.Project != nil {
				project = r.Project.Name
			}
			quoteRef := ""
			if r.Quote != nil {
				quoteRef = r.Quote.ReferenceNumber
			}
			receivedDate := ""
			if r.ReceivedDate != nil {
				receivedDate = r.ReceivedDate.Format("2006-01-02")
			}
			receivedValue := ""
			if r.ReceivedValue != nil {
				receivedValue = strconv.FormatFloat(*r.ReceivedValue, 'f', 2, 64)
			}
			receivedCurrency := ""
			if r.ReceivedCurrency != nil {
				receivedCurrency = *r.ReceivedCurrency
			}

			row := []string{
				r.ReferenceNumber,
				r.Date.Format("2006-01-02"),
				r.Status,
				supplier,
				project,
				quoteRef,
				receivedDate,
				receivedValue,
				receivedCurrency,
			}
			if err := writer.Write(row); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error writing CSV row"})
				return
			}
		}
	}
}

package handlers

import (
	"argocrm/models"
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

// GenerateQuotePDF godoc
// @Summary Generate quote PDF
// @Description Render a quote as a printable PDF with an embedded verification QR code
// @Tags Quotes
// @Param id path int true "Quote ID"
// @Success 200 "PDF file"
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/quotes/{id}/pdf [get]
func GenerateQuotePDF(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quote ID"})
			return
		}

		var quote models.QuoteGorm
		tx := db
		for _, preload := range quotePreloads {
			tx = tx.Preload(preload)
		}
		if err := tx.First(&quote, id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "Quote not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch quote", "details": err.Error()})
			return
		}

		titleCaser := cases.Title(language.Und)

		pdf := gofpdf.New("P", "mm", "A4", "")
		pdf.AddPage()

		// Header
		pdf.SetFont("Arial", "B", 18)
		pdf.Cell(0, 12, "Quotation")
		pdf.Ln(14)

		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(50, 8, "Reference Number:")
		pdf.SetFont("Arial", "", 11)
		pdf.Cell(0, 8, quote.ReferenceNumber)
		pdf.Ln(8)

		writeRow := func(label, value string) {
			pdf.SetFont("Arial", "B", 11)
			pdf.Cell(50, 8, label+":")
			pdf.SetFont("Arial", "", 11)
			pdf.Cell(0, 8, value)
			pdf.Ln(8)
		}

		writeRow("Date", quote.Date.Format("2006-01-02"))
		if quote.Client != nil {
			writeRow("Client", titleCaser.String(quote.Client.Name))
		}
		if quote.Supplier != nil {
			writeRow("Supplier", titleCaser.String(quote.Supplier.Name))
		}
		if quote.Project != nil {
			writeRow("Project", titleCaser.String(quote.Project.Name))
		}
		if quote.ContactPerson != nil {
			writeRow("Contact Person", titleCaser.String(quote.ContactPerson.Name))
		}
		if quote.SalesPerson != nil {
			writeRow("Sales Person", titleCaser.String(quote.SalesPerson.Name))
		}

		writeRow("Value", fmt.Sprintf("%s %.2f", quote.Currency, quote.Value))
		if quote.Currency != "AED" {
			writeRow("Value (AED)", fmt.Sprintf("AED %.2f", quote.Value*quote.FxRate))
			writeRow("FX Rate", fmt.Sprintf("%.4f", quote.FxRate))
		}
		writeRow("Outcome", quote.Outcome)
		if quote.DeliveryDate != nil {
			writeRow("Delivery Date", quote.DeliveryDate.Format("2006-01-02"))
		}

		if quote.Notes != nil && *quote.Notes != "" {
			pdf.Ln(4)
			pdf.SetFont("Arial", "B", 11)
			pdf.Cell(0, 8, "Notes:")
			pdf.Ln(8)
			pdf.SetFont("Arial", "", 10)
			pdf.MultiCell(0, 6, *quote.Notes, "", "L", false)
		}

		// Verification QR bottom-right: scanning resolves the quote by
		// reference number.
		qrPayload := fmt.Sprintf(`{"id":%d,"reference_number":%q}`, quote.ID, quote.ReferenceNumber)
		qrPNG, err := qrcode.Encode(qrPayload, qrcode.Medium, 256)
		if err == nil {
			opts := gofpdf.ImageOptions{ImageType: "PNG"}
			pdf.RegisterImageOptionsReader("quote-qr", opts, bytes.NewReader(qrPNG))
			pdf.ImageOptions("quote-qr", 160, 250, 35, 35, false, opts, 0, "")
		}

		var buf bytes.Buffer
		if err := pdf.Output(&buf); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render PDF", "details": err.Error()})
			return
		}

		c.Header("Content-Disposition", fmt.Sprintf("inline;filename=%s.pdf", quote.ReferenceNumber))
		c.Data(http.StatusOK, "application/pdf", buf.Bytes())
	}
}

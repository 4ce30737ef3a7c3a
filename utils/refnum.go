package utils

import (
	"fmt"
	"time"
)

// Reference number prefixes per document kind.
const (
	RefTagQuote = "Q"
	RefTagRfq   = "R"
)

// GenerateReferenceNumber builds a document reference such as
// "ARGO-Q007-03-2024": company prefix, kind tag with a zero-padded
// serial, then the month and year of the document date. Serials only
// reset when they roll past three digits naturally; they are global,
// not per-month.
func GenerateReferenceNumber(serial int, tag string, date time.Time) string {
	return fmt.Sprintf("ARGO-%s%03d-%02d-%d", tag, serial, int(date.Month()), date.Year())
}

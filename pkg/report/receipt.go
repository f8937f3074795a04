package report

import (
	"bytes"
	"fmt"

	"learnx/internal/data/entity"

	"github.com/jung-kurt/gofpdf"
)

// GenerateReceipt renders a PDF receipt for a completed payment.
func GenerateReceipt(payment *entity.Payment, courseTitle, payerName string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(40, 12, "LearnX Payment Receipt")
	pdf.Ln(16)

	pdf.SetFont("Arial", "", 12)
	line := func(label, value string) {
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(55, 8, label)
		pdf.SetFont("Arial", "", 12)
		pdf.Cell(0, 8, value)
		pdf.Ln(9)
	}

	line("Paid by:", payerName)
	line("Course:", courseTitle)
	line("Amount:", fmt.Sprintf("INR %.2f", payment.Amount))
	line("Method:", string(payment.Method))
	line("Transaction ID:", payment.TransactionID)
	if payment.ExternalTransactionID != nil {
		line("Bank reference:", *payment.ExternalTransactionID)
	}
	line("Date:", payment.CreatedAt.Format("02 Jan 2006 15:04"))
	line("Status:", string(payment.Status))

	pdf.Ln(8)
	pdf.SetFont("Arial", "I", 10)
	pdf.Cell(0, 8, "This receipt confirms a verified course payment on the LearnX platform.")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt PDF: %w", err)
	}

	return buf.Bytes(), nil
}

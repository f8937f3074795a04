package report

import (
	"fmt"

	"learnx/internal/data/entity"

	"github.com/xuri/excelize/v2"
)

// ExportPayments renders payments as an XLSX workbook for the admin back
// office.
func ExportPayments(payments []*entity.Payment) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Payments"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("create payments sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	headers := []string{
		"Transaction ID", "User ID", "Course ID", "Amount", "Method",
		"Status", "External Transaction ID", "Verified By User",
		"Verified By Admin", "Created At",
	}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("header cell name: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, fmt.Errorf("write header %s: %w", h, err)
		}
	}

	for row, p := range payments {
		externalID := ""
		if p.ExternalTransactionID != nil {
			externalID = *p.ExternalTransactionID
		}

		values := []interface{}{
			p.TransactionID,
			p.UserID.String(),
			p.CourseID.String(),
			p.Amount,
			string(p.Method),
			string(p.Status),
			externalID,
			p.VerifiedByUser,
			p.VerifiedByAdmin,
			p.CreatedAt.Format("2006-01-02 15:04:05"),
		}

		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, fmt.Errorf("cell name: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("write payment row %d: %w", row+2, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	return buf.Bytes(), nil
}

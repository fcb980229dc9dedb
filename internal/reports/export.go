package reports

import (
	"context"
	"io"
	"strconv"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gocarina/gocsv"
)

// ExportSalesCSV streams the sales of a range as CSV.
func (r *Repository) ExportSalesCSV(ctx context.Context, w io.Writer, from, toExclusive time.Time, limit int) error {
	rows, err := r.Sales(ctx, from, toExclusive, limit)
	if err != nil {
		return err
	}
	return gocsv.Marshal(&rows, w)
}

// ExportSalesXLSX writes the sales of a range as an xlsx workbook.
func (r *Repository) ExportSalesXLSX(ctx context.Context, w io.Writer, from, toExclusive time.Time, limit int) error {
	rows, err := r.Sales(ctx, from, toExclusive, limit)
	if err != nil {
		return err
	}

	const sheet = "Sales"
	xlsx := excelize.NewFile()
	index := xlsx.NewSheet(sheet)
	xlsx.SetActiveSheet(index)

	xlsx.SetCellValue(sheet, "A1", "sale_id")
	xlsx.SetCellValue(sheet, "B1", "sale_date")
	xlsx.SetCellValue(sheet, "C1", "total_amount")

	for i, row := range rows {
		line := strconv.Itoa(i + 2)
		xlsx.SetCellValue(sheet, "A"+line, row.SaleID)
		xlsx.SetCellValue(sheet, "B"+line, row.SaleDate.Format(time.RFC3339))
		xlsx.SetCellValue(sheet, "C"+line, row.TotalAmount.String())
	}

	return xlsx.Write(w)
}

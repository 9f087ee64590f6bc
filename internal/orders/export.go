package orders

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strconv"

	"github.com/xuri/excelize/v2"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

var ErrUnknownFormat = errors.New("invalid format (use csv or xlsx)")

var exportHeader = []string{
	"Order ID", "Transaction", "Order Date", "Buyer", "Plant", "Garden", "Seller",
	"Quantity", "Total", "Status", "Flight Date", "Tracking Number",
}

// Export renders rows as a download. It returns the body, content type and
// file extension.
func Export(rows []Row, format string) ([]byte, string, string, error) {
	switch format {
	case "", FormatCSV:
		data, err := exportCSV(rows)
		return data, "text/csv; charset=utf-8", FormatCSV, err
	case FormatXLSX, "excel":
		data, err := exportXLSX(rows)
		return data, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", FormatXLSX, err
	}
	return nil, "", "", ErrUnknownFormat
}

func exportCSV(rows []Row) ([]byte, error) {
	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)
	_ = w.Write(exportHeader)
	for _, r := range rows {
		_ = w.Write([]string{
			r.ID,
			r.TransactionNumber,
			r.OrderDate,
			r.BuyerName,
			r.PlantName,
			r.GardenName,
			r.SellerName,
			strconv.Itoa(r.Quantity),
			r.Total,
			r.Status,
			r.FlightDate,
			r.TrackingNumber,
		})
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func exportXLSX(rows []Row) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := "Orders"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	_ = f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	for c, v := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		_ = f.SetCellValue(sheet, cell, v)
	}
	for i, r := range rows {
		total, _ := strconv.ParseFloat(r.Total, 64)
		values := []any{
			r.ID,
			r.TransactionNumber,
			r.OrderDate,
			r.BuyerName,
			r.PlantName,
			r.GardenName,
			r.SellerName,
			r.Quantity,
			total,
			r.Status,
			r.FlightDate,
			r.TrackingNumber,
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, i+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	_ = f.SetColWidth(sheet, "A", "B", 18)
	_ = f.SetColWidth(sheet, "C", "C", 12)
	_ = f.SetColWidth(sheet, "D", "G", 24)
	_ = f.SetColWidth(sheet, "H", "I", 10)
	_ = f.SetColWidth(sheet, "J", "L", 16)

	style, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#1F2937"}, Pattern: 1},
	})
	_ = f.SetCellStyle(sheet, "A1", "L1", style)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

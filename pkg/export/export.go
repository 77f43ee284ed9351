// Package export renders quote line items for external consumers.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/core/session"
)

// Line is one exported quote position.
type Line struct {
	ItemID     string  `json:"item_id"`
	PackageID  string  `json:"package_id"`
	ProductID  string  `json:"product_id"`
	Name       string  `json:"name"`
	Unit       string  `json:"unit"`
	Quantity   float64 `json:"quantity"`
	SalesPrice float64 `json:"sales_price"`
	Labor      float64 `json:"labor"`
	Total      float64 `json:"total"`
}

// FromSession flattens the session's line items, protection devices last.
func FromSession(sess *session.Session) []Line {
	items := sess.LineItems()
	items = append(items, sess.ProtectionDeviceItems()...)
	lines := make([]Line, 0, len(items))
	for _, it := range items {
		line := Line{
			ItemID:    it.ID,
			PackageID: it.PackageID,
			ProductID: it.ProductID,
			Name:      it.Name,
			Unit:      it.Unit,
			Quantity:  it.Quantity,
		}
		if cost, ok := sess.ItemCost(it.ID); ok {
			line.SalesPrice = cost.SalesPricePerUnit
			line.Labor = cost.LaborCost
			line.Total = cost.Total
		}
		lines = append(lines, line)
	}
	return lines
}

// WriteJSON writes the quote positions to w in JSON format.
func WriteJSON(w io.Writer, lines []Line) error {
	enc := json.NewEncoder(w)
	return enc.Encode(lines)
}

// WriteCSV writes the quote positions to w in CSV format.
func WriteCSV(w io.Writer, lines []Line) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"item_id", "package_id", "product_id", "name", "unit", "quantity", "sales_price", "labor", "total"}); err != nil {
		return err
	}
	for _, l := range lines {
		rec := []string{
			l.ItemID,
			l.PackageID,
			l.ProductID,
			l.Name,
			l.Unit,
			strconv.FormatFloat(l.Quantity, 'f', -1, 64),
			strconv.FormatFloat(l.SalesPrice, 'f', 2, 64),
			strconv.FormatFloat(l.Labor, 'f', 2, 64),
			strconv.FormatFloat(l.Total, 'f', 2, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

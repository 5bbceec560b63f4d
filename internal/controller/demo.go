package controller

import (
	"strings"

	"github.com/invoicer/invoicer/internal/models"
)

// invoiceColumns is the column order the backend asks the model for
var invoiceColumns = []string{
	"TOTAL BUYING PRICE", "CALC TOTAL", "BUYING PRICE", "PRODUCT CODE", "CATEGORY",
	"BRAND", "PRODUCT NAME", "QUANTITY", "OUM", "INVOICE DATE", "DELIVERY DATE",
	"PAYMENT DUE", "SUPPLIER", "SOURCE", "NOTES",
}

var alcoholColumns = append(append([]string{}, invoiceColumns...),
	"Alcohol contents", "Wine Year", "Wine Region & Country", "ML")

func tsv(rows ...[]string) string {
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, strings.Join(row, "\t"))
	}
	return strings.Join(lines, "\n")
}

// DemoData returns the placeholder values shown in demo mode
func DemoData() models.DemoOutputs {
	return models.DemoOutputs{
		ProductsTSV: tsv(
			invoiceColumns,
			[]string{"42.00", "", "8.40", "CH-1021", "CHEESE", "Valbreso", "Feta PDO", "5", "kg", "2024-03-04", "2024-03-05", "2024-04-03", "Demo Foods Ltd", "INV-0001", ""},
			[]string{"18.60", "", "3.10", "CN-3307", "CANNED", "[Mutti]", "Peeled Tomatoes 400g", "6", "can", "2024-03-04", "2024-03-05", "2024-04-03", "Demo Foods Ltd", "INV-0001", ""},
		),
		AlcoholTSV: tsv(
			alcoholColumns,
			[]string{"95.40", "", "15.90", "WN-5510", "WINE (RED)", "Chateau Demo", "Bordeaux Rouge", "6", "BT", "2024-03-04", "2024-03-05", "2024-04-03", "Demo Foods Ltd", "INV-0001", "", "13.5%", "2020", "Bordeaux, France", "750ml"},
		),
		JSONSummary: `{
  "supplier": "Demo Foods Ltd",
  "invoice_number": "INV-0001",
  "invoice_date": "2024-03-04",
  "line_items": 3,
  "net_total": 156.00
}`,
		VATGrandTotal: "Net: 156.00\nVAT (20%): 31.20\nGrand total: 187.20",
		RichTextMessage: "<p><strong>Invoice INV-0001</strong> from Demo Foods Ltd was processed.</p>" +
			"<p>3 line items, grand total <strong>187.20</strong>.</p>",
	}
}

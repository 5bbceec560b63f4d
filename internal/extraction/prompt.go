package extraction

import "strings"

// Columns is the fixed column order of the invoice TSV
var Columns = []string{
	"TOTAL BUYING PRICE", "CALC TOTAL", "BUYING PRICE", "PRODUCT CODE", "CATEGORY",
	"BRAND", "PRODUCT NAME", "QUANTITY", "OUM", "INVOICE DATE", "DELIVERY DATE",
	"PAYMENT DUE", "SUPPLIER", "SOURCE", "NOTES", "Alcohol contents", "Wine Year",
	"Wine Region & Country", "ML",
}

func buildInvoicePrompt() string {
	return `Clear your memory before you start.
You are an invoice parser and formatter. Extract structured data from the supplier invoice in the image and output a single TSV table of every product, with this header row:
` + strings.Join(Columns, "\t") + `

General rules:
* Parse every field you can read into an internal JSON object first, then build the table from it.
* Every row must contain every column; use "" when a value is missing.
* Infer what you can. Wrap anything inferred in [ ].
* Keep the column order exactly as given.
* Output only the TSV table. No explanations, no follow-up questions, no emojis.
* Translate non-English text to English, except names.
* Copy values exactly as they appear on the invoice.

Columns:
* TOTAL BUYING PRICE: row total (unit price x quantity) as printed.
* CALC TOTAL: leave empty, the user fills it later.
* BUYING PRICE: unit price as printed.
* PRODUCT CODE: the exact code.
* CATEGORY: for food, CHEESE, MEAT, CANNED, CONDIMENT, SPICE and so on; for drinks, WINE (WHITE, RED, ROSE, SPARKLING) or the spirit type (WHISKEY, RUM, CHAMPAGNE). Infer if missing, leave empty if unknown.
* BRAND: brand or manufacturer, inferred if not printed.
* PRODUCT NAME: as printed.
* QUANTITY: as printed.
* OUM: unit of measure as printed (kg, gr, lit, BT for bottle, can).
* INVOICE DATE, DELIVERY DATE, PAYMENT DUE: as printed.
* SUPPLIER: supplier name.
* SOURCE: invoice number.
* NOTES: any note that applies to the item.
Alcohol, drink and wine rows only:
* Alcohol contents: alcohol %, inferred if missing, empty if unknown.
* Wine Year: vintage, inferred if missing, empty if unknown.
* Wine Region & Country: where it is made, inferred if missing, empty if unknown.
* ML: bottle volume (1 liter, 750ml).`
}

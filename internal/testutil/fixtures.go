package testutil

import (
	"fmt"
	"strings"
)

// ListingPage renders a synthetic listing page holding count ranked rows
// starting at rank start, shaped like the real site's table markup.
func ListingPage(start, count int) []byte {
	var b strings.Builder
	b.WriteString("<html><body><table><thead><tr><th></th><th>#</th><th>Name</th>")
	b.WriteString("<th>Price</th><th>24h %</th><th>7d %</th><th>Volume</th><th>Market Cap</th></tr></thead><tbody>")
	for i := 0; i < count; i++ {
		rank := start + i
		b.WriteString(ListingRow(rank, fmt.Sprintf("Coin%d", rank), fmt.Sprintf("C%d", rank),
			fmt.Sprintf("$%d.50", rank), "1.25%", fmt.Sprintf("$%d,000,000", rank)))
	}
	b.WriteString("</tbody></table></body></html>")
	return []byte(b.String())
}

// ListingRow renders one asset row with the given cell texts.
func ListingRow(rank int, name, symbol, price, change, marketCap string) string {
	return fmt.Sprintf(
		"<tr><td></td><td>%d</td><td><p>%s</p><p>%s</p></td><td>%s</td><td>%s</td>"+
			"<td>2.00%%</td><td>$1,000</td><td>%s</td></tr>",
		rank, name, symbol, price, change, marketCap)
}

// MarketsPayload renders a synthetic markets API response with count
// well-formed asset entries.
func MarketsPayload(count int) []byte {
	var b strings.Builder
	b.WriteString("[")
	for i := 1; i <= count; i++ {
		if i > 1 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b,
			`{"symbol":"c%d","name":"Coin%d","current_price":%d.5,"price_change_percentage_24h":1.25,"market_cap":%d000000}`,
			i, i, i, i)
	}
	b.WriteString("]")
	return []byte(b.String())
}

// SimplePricePayload renders a simple-price response for one asset.
func SimplePricePayload(assetID string, price float64, updatedAt int64) []byte {
	return []byte(fmt.Sprintf(`{"%s":{"usd":%g,"last_updated_at":%d}}`, assetID, price, updatedAt))
}

package enhance

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Currency and billing-term token patterns. The regex pass runs before
// the DOM pass so tokens hiding outside proper tags are also caught.
var pricePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\$\s?\d[\d,]*(\.\d+)?`),
	regexp.MustCompile(`(?i)€\s?\d[\d,]*(\.\d+)?`),
	regexp.MustCompile(`(?i)£\s?\d[\d,]*(\.\d+)?`),
	regexp.MustCompile(`(?i)\bUSD\s?\d[\d,]*(\.\d+)?`),
	regexp.MustCompile(`(?i)\b\d[\d,]*(\.\d+)?\s?(USD|EUR|GBP|KRW)\b`),
	regexp.MustCompile(`(?i)\bfrom\s+\$\s?\d[\d,]*(\.\d+)?`),
	regexp.MustCompile(`(?i)\bstarting\s+at\s+\$\s?\d[\d,]*(\.\d+)?`),
}

// billingTermPattern flags a node for removal on its own: explicit
// billing vocabulary is pricing talk even after the token pass stripped
// the amounts.
var billingTermPattern = regexp.MustCompile(`(?i)(per\s+(month|year)|/mo\b|/yr\b|pricing\s*:|\bbilled\b|\b(USD|EUR|GBP|KRW)\b|[$€£]\s?\d)`)

// billingKeywords flag a node only when combined with a digit, so
// "pricing varies by plan" prose without numbers survives.
var billingKeywords = []string{"pricing", "price", "cost", "plan fee"}

var priceColumnKeywords = []string{"price", "pricing", "cost", "plan"}

// redactPricing removes pricing tokens, pricing paragraphs and list
// items, price columns, and contaminated table rows. Rows are evaluated
// independently of their table so one bad row never deletes the whole
// comparison. Deterministic: matched text no longer exists after one
// pass.
func redactPricing(html string) (string, error) {
	for _, p := range pricePatterns {
		html = p.ReplaceAllString(html, "")
	}

	doc, err := parseFragment(html)
	if err != nil {
		return "", err
	}

	doc.Find("p, li").Each(func(_ int, s *goquery.Selection) {
		if isPricingText(s.Text()) {
			s.Remove()
		}
	})

	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		redactPriceColumns(table)
		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			if isPricingText(row.Text()) {
				row.Remove()
			}
		})
	})

	return renderFragment(doc)
}

func isPricingText(text string) bool {
	if billingTermPattern.MatchString(text) {
		return true
	}
	t := strings.ToLower(text)
	if !strings.ContainsAny(t, "0123456789") {
		return false
	}
	for _, kw := range billingKeywords {
		if strings.Contains(t, kw) {
			return true
		}
	}
	return false
}

// redactPriceColumns drops whole columns whose header cell names a
// billing concept, keeping row structure aligned.
func redactPriceColumns(table *goquery.Selection) {
	rows := table.Find("tr")
	if rows.Length() == 0 {
		return
	}

	var priceCols []int
	rows.First().Find("th, td").Each(func(i int, cell *goquery.Selection) {
		header := strings.ToLower(strings.TrimSpace(cell.Text()))
		for _, kw := range priceColumnKeywords {
			if strings.Contains(header, kw) {
				priceCols = append(priceCols, i)
				return
			}
		}
	})
	if len(priceCols) == 0 {
		return
	}

	drop := make(map[int]bool, len(priceCols))
	for _, i := range priceCols {
		drop[i] = true
	}
	rows.Each(func(_ int, row *goquery.Selection) {
		row.Find("th, td").Each(func(i int, cell *goquery.Selection) {
			if drop[i] {
				cell.Remove()
			}
		})
	})
}

package enhance

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const tableWrapperClass = "table-scroll"

// tableScrollStyle is injected once per body, guarded by the literal
// marker comment so repeated runs never duplicate the stylesheet. It is
// appended after the content, never prepended: a style element at the
// very start of a fragment would be hoisted into <head> on the next
// parse and lost from the body.
const tableScrollStyle = tableStyleMarker + `
<style>
.table-scroll{overflow-x:auto;-webkit-overflow-scrolling:touch;margin:18px 0;border:1px solid rgba(0,0,0,.08);border-radius:12px}
.table-scroll table{min-width:640px;width:100%;border-collapse:collapse}
.table-scroll th,.table-scroll td{padding:10px 12px}
</style>`

// reflowTables wraps every table in a horizontal-scroll container.
// "Already wrapped" is a structural check on the immediate parent, so
// the wrap is naturally idempotent without a marker.
func reflowTables(html string) (string, error) {
	doc, err := parseFragment(html)
	if err != nil {
		return "", err
	}

	wrapped := false
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		parent := table.Parent()
		if goquery.NodeName(parent) == "div" && parent.HasClass(tableWrapperClass) {
			return
		}
		table.WrapHtml(`<div class="` + tableWrapperClass + `"></div>`)
		wrapped = true
	})

	out, err := renderFragment(doc)
	if err != nil {
		return "", err
	}

	hasWrapper := wrapped || strings.Contains(out, tableWrapperClass)
	if hasWrapper && !strings.Contains(out, tableStyleMarker) {
		out = out + "\n" + tableScrollStyle
	}
	return out, nil
}

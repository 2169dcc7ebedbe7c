package enhance

import (
	"regexp"
	"strings"
)

var checklistHeadingPattern = regexp.MustCompile(`(?i)save\s*(/|or)\s*print\s*checklist`)

// checklistSection is the fixed save/print affordance appended to every
// article that lacks one. The print button keeps the section useful
// without any site-side shortcode support.
const checklistSection = checklistStartMarker + `
<section class="autopost-checklist">
<h2>Save / Print Checklist</h2>
<p>A save/print-friendly checklist for this article. In the print window you can save it as a PDF or print a copy.</p>
<ul>
<li><strong>Pick 2-3 tools</strong> that match your budget and workflow.</li>
<li><strong>Confirm must-have features</strong>: integrations, automation, reporting.</li>
<li><strong>Map one real workflow</strong> end-to-end before committing.</li>
<li><strong>Run a 7-day test</strong> with your own data.</li>
<li><strong>Decide and document</strong> success metrics and next steps.</li>
</ul>
<button type="button" onclick="window.print()">Open print window (Save as PDF / Print)</button>
</section>
` + checklistEndMarker

// ensureChecklist appends the save/print section once. The stage marker
// is sufficient to skip; a recognizable existing heading also counts so
// hand-written checklists are left alone.
func ensureChecklist(html string) (string, error) {
	if strings.Contains(html, checklistStartMarker) {
		return html, nil
	}
	if checklistHeadingPattern.MatchString(html) {
		return html, nil
	}
	return strings.TrimRight(html, "\n") + "\n" + checklistSection + "\n", nil
}

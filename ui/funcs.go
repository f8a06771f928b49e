package ui

import (
	"fmt"
	"html/template"
	"regexp"
	"strconv"
	"strings"

	"clinvarminer/domain/conflict"
	"clinvarminer/domain/filter"
	"clinvarminer/ports"
	"clinvarminer/ui/view"

	"github.com/microcosm-cc/bluemonday"
)

// breakPolicy lets only line-break hints through
var breakPolicy = bluemonday.NewPolicy().AllowElements("wbr")

var camelCase = regexp.MustCompile(`([a-z])([A-Z])`)

var breakReplacer = strings.NewReplacer(
	"(", "<wbr/>(",
	")", ")<wbr/>",
	",", ",<wbr/>",
	".", ".<wbr/>",
	":", "<wbr/>:<wbr/>",
	"-", "-<wbr/>",
)

// extraBreaks escapes text and adds line-break opportunities to long
// variant, condition and submitter names.
func extraBreaks(text string) template.HTML {
	out := breakReplacer.Replace(template.HTMLEscapeString(text))
	out = camelCase.ReplaceAllString(out, "$1<wbr/>$2")
	return template.HTML(breakPolicy.Sanitize(out))
}

func externalLink(href string, text template.HTML) template.HTML {
	return template.HTML(`<a class="external" href="` + template.HTMLEscapeString(href) + `">`) + text + "</a>"
}

// conditionLink links a condition name to the database it was submitted from
func conditionLink(xref conflict.Xref, name string) template.HTML {
	var href string
	switch strings.ToLower(xref.DB) {
	case "medgen", "umls":
		href = "https://www.ncbi.nlm.nih.gov/medgen/" + xref.ID
	case "omim":
		href = "https://www.omim.org/entry/" + xref.ID
	case "genereviews":
		href = "https://www.ncbi.nlm.nih.gov/books/" + xref.ID
	case "hp":
		href = "https://hpo.jax.org/app/browse/term/" + xref.ID
	case "mesh":
		href = "https://www.ncbi.nlm.nih.gov/mesh/?term=" + xref.ID
	case "omim phenotypic series":
		href = "https://www.omim.org/phenotypicseries/" + xref.ID
	}
	if href == "" || xref.ID == "" {
		return extraBreaks(name)
	}
	return externalLink(href, extraBreaks(name))
}

// submitterLink links to the ClinVar page of a submitter. Id 0 has none.
func submitterLink(id int64, name string) template.HTML {
	if id == 0 {
		return extraBreaks(name)
	}
	return externalLink("https://www.ncbi.nlm.nih.gov/clinvar/submitters/"+strconv.FormatInt(id, 10)+"/", extraBreaks(name))
}

func geneLink(gene string) template.HTML {
	if gene == "" {
		return ""
	}
	return externalLink("https://medlineplus.gov/genetics/gene/"+strings.ToLower(gene)+"/", template.HTML(template.HTMLEscapeString(gene)))
}

func rcvLink(rcv string) template.HTML {
	return externalLink("https://www.ncbi.nlm.nih.gov/clinvar/"+rcv+"/", template.HTML(template.HTMLEscapeString(rcv)))
}

func rsidLink(rsid string) template.HTML {
	if rsid == "" {
		return ""
	}
	return externalLink("https://www.ncbi.nlm.nih.gov/snp/"+rsid, template.HTML(template.HTMLEscapeString(rsid)))
}

// h2 is a section heading with a permalink anchor
func h2(text string) template.HTML {
	id := strings.ReplaceAll(strings.ToLower(text), " ", "-")
	return template.HTML(fmt.Sprintf(`<h2 id="%s">%s <a class="internal" href="#%s">#</a></h2>`,
		template.HTMLEscapeString(id), template.HTMLEscapeString(text), template.HTMLEscapeString(id)))
}

func conflictLevelName(level conflict.Level) string {
	return level.String()
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"superescape":   filter.PathSegment,
		"genesegment":   filter.GeneSegment,
		"genelabel":     filter.GeneLabel,
		"reviewstatus":  filter.ReviewStatusLabel,
		"conflictlevel": conflictLevelName,
		"extrabreaks":   extraBreaks,
		"conditionlink": conditionLink,
		"submitterlink": submitterLink,
		"genelink":      geneLink,
		"rcvlink":       rcvLink,
		"rsidlink":      rsidLink,
		"h2":            h2,
		"browsepath":    func(dim ports.Dimension, key string) string { return view.BrowsePath(dim, key) },
		"dimtitle":      view.DimensionTitle,
		"levels":        func() []conflict.Level { return append([]conflict.Level{conflict.MinLevel, conflict.LevelNone}, conflict.ConflictLevels()...) },
		"reviewlevels":  func() []int { return []int{filter.AnyReviewStatus, 0, 1, 2, 3, 4} },
		"add":           func(a, b int) int { return a + b },
	}
}

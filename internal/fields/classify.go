package fields

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/gasops/mtr-extract/constants"
	"github.com/gasops/mtr-extract/internal/docintel"
)

// ExtractedData groups classifier output under fixed buckets. Chemical keys
// are element symbols; the other buckets use the template's own field names.
type ExtractedData struct {
	ChemicalComposition map[string]string
	TensileProperties   map[string]string
	Hardness            map[string]string
	CVNProperties       map[string]string
	GeneralInfo         map[string]string
}

func NewExtractedData() *ExtractedData {
	return &ExtractedData{
		ChemicalComposition: map[string]string{},
		TensileProperties:   map[string]string{},
		Hardness:            map[string]string{},
		CVNProperties:       map[string]string{},
		GeneralInfo:         map[string]string{},
	}
}

var (
	heatPatterns = []*regexp.Regexp{
		regexp.MustCompile(`heat\s*(?:no|number|#)?\s*:?\s*([a-z0-9]+)`),
		regexp.MustCompile(`heat\s+([a-z0-9]+)`),
	}
	gradePatterns = []*regexp.Regexp{
		regexp.MustCompile(`grade\s*:?\s*([a-z0-9]+)`),
		regexp.MustCompile(`api\s*5l\s*([a-z0-9]+)`),
		regexp.MustCompile(`x(\d+)`),
	}

	percentStrip = regexp.MustCompile(`[%\s]`)
	digitsOnly   = regexp.MustCompile(`[^\d.]`)
)

// ExtractFields scans reconstructed tables and free text for material
// properties. Table rows need at least two cells: the first is the property
// label, the second the raw value. A value that fails its numeric check is
// skipped silently; nothing here ever fails a row or a document.
func ExtractFields(tables []docintel.Table, freeText string) *ExtractedData {
	data := NewExtractedData()

	for _, table := range tables {
		if len(table.Headers) == 0 || len(table.Rows) == 0 {
			continue
		}
		for _, row := range table.Rows {
			if len(row) < 2 {
				continue
			}
			classifyRow(data, row[0], row[1])
		}
	}

	scanText(data, freeText)
	return data
}

// classifyRow applies the chemical, tensile, hardness and impact rules to a
// single label/value pair. The rules are independent: a label can in
// principle hit more than one bucket.
func classifyRow(data *ExtractedData, rawLabel, rawValue string) {
	label := strings.ToLower(strings.TrimSpace(rawLabel))
	value := strings.TrimSpace(rawValue)

	// first matching synonym wins, then stop
	for _, syn := range constants.ElementSynonyms {
		if strings.Contains(label, syn.Name) {
			if v, ok := numericValue(value, percentStrip); ok {
				data.ChemicalComposition[syn.Symbol] = v
			}
			break
		}
	}

	switch {
	case strings.Contains(label, "yield"):
		if v, ok := numericValue(value, digitsOnly); ok {
			data.TensileProperties["YieldStrength"] = v
		}
	case strings.Contains(label, "tensile") || strings.Contains(label, "ultimate"):
		if v, ok := numericValue(value, digitsOnly); ok {
			data.TensileProperties["UltimateTensileStrength"] = v
		}
	case strings.Contains(label, "elongation"):
		if v, ok := numericValue(value, percentStrip); ok {
			data.TensileProperties["ElongationPercentage"] = v
		}
	}

	if strings.Contains(label, "hardness") {
		if v, ok := numericValue(value, digitsOnly); ok {
			data.Hardness["MaximumHardness"] = v
		}
	}

	for _, kw := range []string{"impact", "cvn", "charpy", "energy"} {
		if strings.Contains(label, kw) {
			if v, ok := numericValue(value, digitsOnly); ok {
				data.CVNProperties["CVNAbsorbedEnergyAverage"] = v
			}
			break
		}
	}
}

// numericValue strips characters per the given pattern and accepts the
// remainder only if it parses as a float.
func numericValue(raw string, strip *regexp.Regexp) (string, bool) {
	clean := strip.ReplaceAllString(raw, "")
	if clean == "" {
		return "", false
	}
	if _, err := strconv.ParseFloat(clean, 64); err != nil {
		return "", false
	}
	return clean, true
}

// scanText recovers heat number and grade from free text. First matching
// pattern wins; matches are upper-cased.
func scanText(data *ExtractedData, freeText string) {
	text := strings.ToLower(freeText)

	for _, p := range heatPatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			data.GeneralInfo["HeatNumber"] = strings.ToUpper(m[1])
			break
		}
	}
	for _, p := range gradePatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			data.GeneralInfo["Grade"] = strings.ToUpper(m[1])
			break
		}
	}
}

package fields

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/gasops/mtr-extract/constants"
)

// PopulateTemplate writes classifier output into a fresh copy of the cleaned
// template. Only fields the template already defines are overwritten; nothing
// is invented. sourceName (typically the input file name) supplies the pipe
// number. The input template is not mutated.
func PopulateTemplate(tmpl map[string]any, data *ExtractedData, sourceName string) map[string]any {
	out := deepCopy(tmpl).(map[string]any)
	now := time.Now()

	if _, exists := out["CertificationDate"]; exists {
		out["CertificationDate"] = now.Format("01/02/2006")
	}

	if heat, ok := data.GeneralInfo["HeatNumber"]; ok {
		out["HeatNumber"] = heat
	} else {
		out["HeatNumber"] = "EXTRACTED_" + now.Format("20060102")
	}
	if grade, ok := data.GeneralInfo["Grade"]; ok {
		if _, exists := out["Grade"]; exists {
			out["Grade"] = grade
		}
	}

	details, _ := out["HNPipeDetails"].([]any)
	if len(details) == 0 {
		return out
	}
	pipe, _ := details[0].(map[string]any)
	if pipe == nil {
		return out
	}

	if grade, ok := data.GeneralInfo["Grade"]; ok {
		pipe["Grade"] = grade
	}
	base := strings.TrimSuffix(sourceName, filepath.Ext(sourceName))
	pipe["PipeNumber"] = strings.ToUpper(base)

	if chem, ok := pipe["HNPipeHeatChemicalResults"].(map[string]any); ok {
		for _, sym := range constants.ElementSymbols {
			if v, found := data.ChemicalComposition[sym]; found {
				chem["Heat"+sym] = v
			}
		}
	}

	// the source cannot tell two product instances apart, so the measured
	// composition is written to both
	if prod, ok := pipe["HNPipeChemicalCompResults"].(map[string]any); ok {
		for _, sym := range constants.ElementSymbols {
			if v, found := data.ChemicalComposition[sym]; found {
				prod["Product1"+sym] = v
				prod["Product2"+sym] = v
			}
		}
	}

	setExisting(pipe, "HNPipeTensileTestResults", data.TensileProperties)
	setExisting(pipe, "HNPipeHardnessResults", data.Hardness)
	setExisting(pipe, "HNPipeCVNResults", data.CVNProperties)

	return out
}

// setExisting overwrites only keys the template sub-object already has.
func setExisting(pipe map[string]any, section string, values map[string]string) {
	target, ok := pipe[section].(map[string]any)
	if !ok {
		return
	}
	for k, v := range values {
		if _, exists := target[k]; exists {
			target[k] = v
		}
	}
}

func deepCopy(node any) any {
	switch v := node.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[k] = deepCopy(val)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			out[i] = deepCopy(val)
		}
		return out
	default:
		return v
	}
}

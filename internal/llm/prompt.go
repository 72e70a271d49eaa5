package llm

import (
	"encoding/json"
	"strings"
)

// maxPromptText caps how much OCR text rides along in a single prompt.
const maxPromptText = 50000

// TemplateFillMessages builds the full template-fill conversation: the model
// receives the cleaned template plus the whole extracted text and must return
// a single JSON object with the template's exact keys and nesting.
func TemplateFillMessages(template map[string]any, extractedText string) []Message {
	system := strings.Join([]string{
		"You are an expert AI assistant designed to extract and structure data from OCR-extracted content of Material Test Reports (MTRs).",
		"You will receive text content from an MTR document and a JSON schema. Your task is to accurately parse the provided text and populate the JSON schema with the corresponding values.",
		"",
		"Instructions:",
		"Identify Key Information: Analyze the input text to find specific data points like HeatNumber, CertificationDate, PipeManufacturerName, and various chemical and mechanical test results (e.g., YieldStrength, UltimateTensileStrength, HeatC, Product1Mn).",
		"Match and Map: Map the extracted values to the corresponding keys in the provided JSON schema.",
		"Handle Missing Data: If a specific data point is not found in the text, leave its corresponding value in the JSON as null. Do not create new keys or alter the structure.",
		"Preserve Structure: Maintain the exact JSON structure, including nested objects and arrays.",
		"Format Values: numerical values must be represented as strings; units go into the separate '*Unit' fields exactly as found; dates convert to MM/DD/YYYY.",
		"",
		"Chemical Equivalency (VERY IMPORTANT):",
		"When populating HNPipeChemicalEquivResults fields (Product1CEPcm, ProductCEPcmCriteria, Product1CEIIW, ProductCEIIWCriteria, Product2CEPcm, Product2CEIIW):",
		"1) Prefer values explicitly labeled 'CE (Pcm)', 'CE Pcm', 'CEIIW', 'CE (IIW)', 'CE IIW', 'Carbon Equivalent (IIW)' or similar; map Product1/Product2 (or Pipe 1/Pipe 2) labels to the matching product index.",
		"2) If a CE value is not explicitly tied to a product, pick the one nearest in the text to that product's identifier or chemical composition block.",
		"3) Never swap products; if mapping is ambiguous, leave the fields null.",
		"4) Return numeric CE values as strings; normalize leading decimals ('.354' -> '0.354'); no units.",
		"5) Populate '*Criteria' fields only when the document explicitly shows a specification value.",
		"",
		"Tensile Results (IMPORTANT):",
		"For YieldStrength, UltimateTensileStrength, YTRatio, SeamWeldTensileStrength and their unit fields:",
		"1) Prefer explicit labels ('Yield Strength', 'YS', 'Ultimate Tensile Strength', 'UTS', 'Seam Weld Tensile').",
		"2) Capture units separately into the '*Unit' fields exactly as shown; never append units to numeric fields.",
		"3) Normalize leading decimals ('.77' -> '0.77') and return numeric values as strings.",
		"4) Map grouped/tabular values by row and proximity; do not invent seam-weld entries when the document does not call them out.",
		"5) If more than one candidate exists and you cannot confidently map it, leave the field null rather than guessing.",
		"",
		"Your output must be a single, valid JSON object that adheres to the provided schema with the values replaced by the extracted data.",
	}, "\n")

	user := strings.Join([]string{
		"JSON TEMPLATE:\n" + mustJSON(template),
		"",
		"OCR TEXT:\n" + clip(extractedText),
		"",
		"INSTRUCTIONS (READ CAREFULLY):",
		"1) Return ONLY a single, valid JSON object that matches the provided template structure. No additional text or commentary.",
		"2) Replace template values only with data explicitly found in the OCR text. Do not invent values.",
		"3) Preserve the exact keys, nesting, and array structure. If a field cannot be found, set it to null (or empty string where the template uses one).",
		"4) All numeric fields as strings, leading decimals normalized with a leading zero.",
		"5) Units go into the '*Unit' fields exactly as shown; leave them null when absent.",
		"6) Dates in MM/DD/YYYY; leave null if they cannot be parsed confidently.",
		"7) If you cannot confidently map a value, set the field to null.",
		"",
		"Return the populated JSON object now.",
	}, "\n")

	return []Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}
}

// TableCategorizeMessages asks the model to sort extracted tables into
// chemical/material/other buckets.
func TableCategorizeMessages(tables any) []Message {
	system := strings.Join([]string{
		"You are a materials science assistant that categorizes tables from technical documents.",
		"Given a list of extracted tables, categorize them into:",
		"- 'chemical': Tables containing chemical composition, elemental analysis, chemical properties",
		"- 'material': Tables containing mechanical properties, physical properties, test results",
		"- 'other': Tables that don't fit the above categories",
		"Return a JSON object with keys 'chemical', 'material', 'other', each containing arrays of table objects.",
		"For each table, clean up the headers and rows to make them more readable if needed.",
		"Output must be valid JSON only (no surrounding explanation).",
	}, "\n")

	user := "TABLES TO CATEGORIZE:\n" + mustJSON(tables) + "\n\nReturn the categorized tables as described."

	return []Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}
}

// PropertiesMessages asks the model for a flat array of
// {category,property,value,unit,notes} records found in the text.
func PropertiesMessages(extractedText string) []Message {
	system := strings.Join([]string{
		"You are a materials science assistant that extracts chemical and material properties from document text.",
		"Given the OCR TEXT, identify and extract all material properties and chemical properties mentioned.",
		"Return a JSON array of objects, each with keys: category, property, value, unit, notes.",
		"- category: 'chemical' for chemical composition/properties, 'material' for physical/mechanical properties",
		"- property: name of the property (e.g., 'Carbon Content', 'Yield Strength', 'Hardness')",
		"- value: the extracted value as string",
		"- unit: unit if available (e.g., '%', 'psi', 'MPa', 'HV') otherwise empty string",
		"- notes: any additional context or location in text",
		"Only extract properties that are explicitly mentioned in the text. Do not infer or hallucinate values.",
		"Output must be valid JSON only (no surrounding explanation).",
	}, "\n")

	user := "OCR TEXT:\n" + clip(extractedText) + "\n\nReturn the JSON array of extracted properties."

	return []Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}
}

// TableGenerateMessages asks the model to organize raw text into structured
// chemical and material tables when the layout pass found none.
func TableGenerateMessages(extractedText string) []Message {
	system := strings.Join([]string{
		"You are a materials science assistant that creates structured tables from document text.",
		"Given the OCR TEXT, analyze it and create well-organized tables for:",
		"- 'chemical': Chemical composition data, elemental analysis, chemical properties",
		"- 'material': Mechanical properties, physical properties, test results",
		"Return a JSON object with keys 'chemical', 'material', each containing arrays of table objects.",
		"Each table object should have: table_name, headers (array), rows (array of arrays).",
		"Only create tables if you find relevant data. Don't create empty or speculative tables.",
		"Output must be valid JSON only (no surrounding explanation).",
	}, "\n")

	user := "OCR TEXT:\n" + clip(extractedText) + "\n\nGenerate structured tables from this text as described."

	return []Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}
}

func clip(s string) string {
	if len(s) > maxPromptText {
		return s[:maxPromptText]
	}
	return s
}

func mustJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(b)
}

package constants

// ElementSynonym maps one spelled-out or abbreviated element name to its
// canonical symbol as used in the MTR template field names.
type ElementSynonym struct {
	Name   string
	Symbol string
}

// ElementSynonyms is the classifier's lookup list, in priority order: for a
// given row label the FIRST entry whose name the label contains wins. Order
// matters — keep full names ahead of their abbreviations. Niobium and its
// older name columbium both map to the template's combined CbNb symbol.
var ElementSynonyms = []ElementSynonym{
	{"carbon", "C"}, {"c", "C"},
	{"manganese", "Mn"}, {"mn", "Mn"},
	{"phosphorus", "P"}, {"p", "P"},
	{"sulfur", "S"}, {"s", "S"}, {"sulphur", "S"},
	{"silicon", "Si"}, {"si", "Si"},
	{"niobium", "CbNb"}, {"nb", "CbNb"}, {"columbium", "CbNb"},
	{"titanium", "Ti"}, {"ti", "Ti"},
	{"copper", "Cu"}, {"cu", "Cu"},
	{"nickel", "Ni"}, {"ni", "Ni"},
	{"molybdenum", "Mo"}, {"mo", "Mo"},
	{"chromium", "Cr"}, {"cr", "Cr"},
	{"vanadium", "V"}, {"v", "V"},
	{"aluminum", "Al"}, {"al", "Al"}, {"aluminium", "Al"},
	{"boron", "B"}, {"b", "B"},
	{"nitrogen", "N"}, {"n", "N"},
	{"calcium", "Ca"}, {"ca", "Ca"},
}

// ElementSymbols lists the canonical symbols in the same order the synonyms
// introduce them.
var ElementSymbols = []string{
	"C", "Mn", "P", "S", "Si", "CbNb", "Ti", "Cu",
	"Ni", "Mo", "Cr", "V", "Al", "B", "N", "Ca",
}

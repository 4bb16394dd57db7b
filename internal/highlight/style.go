package highlight

import "writing_coach/internal/issue"

type Style struct {
	Class     string `json:"class"`
	Underline string `json:"underline"`
	Color     string `json:"color"`
}

var kindColors = map[issue.Kind]string{
	issue.KindSpelling:    "#d32f2f",
	issue.KindGrammar:     "#f57c00",
	issue.KindPunctuation: "#7b1fa2",
	issue.KindStyle:       "#1976d2",
	issue.KindVocabulary:  "#388e3c",
	issue.KindStructure:   "#00838f",
	issue.KindCohesion:    "#5d4037",
}

// StyleFor maps an issue onto its rendering. Errors get a wavy underline,
// warnings a solid one and suggestions a dotted one.
func StyleFor(kind issue.Kind, sev issue.Severity) Style {
	underline := "dotted"
	switch sev {
	case issue.SeverityError:
		underline = "wavy"
	case issue.SeverityWarning:
		underline = "solid"
	}
	color, ok := kindColors[kind]
	if !ok {
		color = "#616161"
	}
	return Style{
		Class:     "hl-" + string(kind) + " hl-" + sev.String(),
		Underline: underline,
		Color:     color,
	}
}

package sink

import (
	"bytes"
	"encoding/xml"
)

const (
	fontSize     = 12.0
	fontCharW    = 0.55
	labelPadding = 4.0
)

// EscapeXML escapes s for use in SVG text and attributes.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// TruncateLabel shortens label to fit width at the label font size.
func TruncateLabel(label string, width float64) string {
	maxChars := max(int((width-2*labelPadding)/(fontSize*fontCharW)), 3)
	r := []rune(label)
	if len(r) <= maxChars {
		return label
	}
	return string(r[:maxChars-2]) + ".."
}

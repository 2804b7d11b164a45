// Package pdfdoc renders the clear text of an exercise as a PDF document.
package pdfdoc

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
)

const (
	fontFamily = "Courier"
	titleSize  = 16
	bodySize   = 12
	lineHeight = 6
)

// Render returns a one column A4 document with title as heading and body in
// a fixed width font, one paragraph per line of body.
func Render(title, body string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(title, true)
	pdf.SetCreator("text2cw", true)
	pdf.AddPage()

	pdf.SetFont(fontFamily, "B", titleSize)
	pdf.MultiCell(0, lineHeight+2, tr(strings.TrimSpace(title)), "", "L", false)
	pdf.Ln(lineHeight)

	pdf.SetFont(fontFamily, "", bodySize)
	for _, line := range strings.Split(strings.TrimSpace(body), "\n") {
		pdf.MultiCell(0, lineHeight, tr(line), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

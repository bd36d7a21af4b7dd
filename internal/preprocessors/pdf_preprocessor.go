// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"payee-scan/internal/observability"
)

// PDFPreprocessor extracts the text of transfer slips and receipts saved as PDF
type PDFPreprocessor struct {
	observer *observability.StandardObserver
	maxPages int
}

// NewPDFPreprocessor creates a new PDF preprocessor
func NewPDFPreprocessor() *PDFPreprocessor {
	return &PDFPreprocessor{maxPages: 20}
}

// SetObserver sets the observability component
func (pp *PDFPreprocessor) SetObserver(observer *observability.StandardObserver) {
	pp.observer = observer
}

// GetName returns the name of this preprocessor
func (pp *PDFPreprocessor) GetName() string {
	return "PDF Text Extractor"
}

// CanProcess checks if this preprocessor can handle the given file
func (pp *PDFPreprocessor) CanProcess(filePath string) bool {
	return strings.ToLower(filepath.Ext(filePath)) == ".pdf"
}

// Process extracts text from each page, one text row per line. Pages are
// separated by a blank line.
func (pp *PDFPreprocessor) Process(filePath string) (*ProcessedContent, error) {
	var finishTiming func(bool, map[string]interface{})
	var finishStep func(bool, string)
	if pp.observer != nil {
		finishTiming = pp.observer.StartTiming("pdf_preprocessor", "process_file", filePath)
		if pp.observer.DebugObserver != nil {
			finishStep = pp.observer.DebugObserver.StartStep("pdf_preprocessor", "process_file", filePath)
		}
	}

	content, err := pp.extract(filePath)

	if finishTiming != nil {
		metadata := map[string]interface{}{}
		if content != nil {
			metadata["page_count"] = content.PageCount
			metadata["line_count"] = content.LineCount
		}
		if err != nil {
			metadata["error"] = err.Error()
		}
		finishTiming(err == nil, metadata)
	}
	if finishStep != nil {
		if err != nil {
			finishStep(false, fmt.Sprintf("Failed to extract text: %v", err))
		} else {
			finishStep(true, fmt.Sprintf("Extracted %d lines from %d pages", content.LineCount, content.PageCount))
		}
	}
	return content, err
}

func (pp *PDFPreprocessor) extract(filePath string) (*ProcessedContent, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("error opening PDF: %w", err)
	}
	defer f.Close()

	content := &ProcessedContent{
		OriginalPath:  filePath,
		Filename:      filepath.Base(filePath),
		Format:        "pdf",
		PageCount:     r.NumPage(),
		ProcessorType: pp.GetName(),
	}
	if content.PageCount > pp.maxPages {
		content.PageCount = pp.maxPages
	}

	var pages []string
	for i := 1; i <= content.PageCount; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := pageText(p)
		if err != nil {
			continue
		}
		if text = cleanLines(text); text != "" {
			pages = append(pages, text)
		}
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("no extractable text in %s", content.Filename)
	}

	content.Text = strings.Join(pages, "\n\n")
	countStats(content)
	return content, nil
}

// pageText rebuilds the page row by row, top to bottom, falling back to
// the plain text stream when the row layout cannot be read
func pageText(p pdf.Page) (string, error) {
	rows, err := p.GetTextByRow()
	if err != nil {
		return p.GetPlainText(nil)
	}

	sorted := make([]*pdf.Row, 0, len(rows))
	for _, row := range rows {
		if row != nil && len(row.Content) > 0 {
			sorted = append(sorted, row)
		}
	}
	// PDF Y grows upwards
	sort.SliceStable(sorted, func(i, j int) bool {
		return averageY(sorted[i].Content) > averageY(sorted[j].Content)
	})

	var buf bytes.Buffer
	for _, row := range sorted {
		if line := rowText(row.Content); strings.TrimSpace(line) != "" {
			buf.WriteString(line)
			buf.WriteString("\n")
		}
	}
	return buf.String(), nil
}

func averageY(texts []pdf.Text) float64 {
	if len(texts) == 0 {
		return 0
	}
	var total float64
	for _, t := range texts {
		total += t.Y
	}
	return total / float64(len(texts))
}

// rowText joins the glyph runs of one row left to right, inserting a space
// wherever the horizontal gap exceeds a fifth of the font size
func rowText(texts []pdf.Text) string {
	if len(texts) == 0 {
		return ""
	}
	sorted := make([]pdf.Text, len(texts))
	copy(sorted, texts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].X < sorted[j].X
	})

	var buf bytes.Buffer
	for i, t := range sorted {
		buf.WriteString(t.S)
		if i == len(sorted)-1 {
			break
		}
		fontSize := t.FontSize
		if fontSize <= 0 {
			fontSize = 12
		}
		if gap := sorted[i+1].X - (t.X + t.W); gap > fontSize*0.2 {
			buf.WriteString(" ")
		}
	}
	return buf.String()
}

// cleanLines trims every line, collapses runs of blanks and tabs and drops
// empty lines. Line structure is kept because names, banks and numbers
// usually sit on separate rows.
func cleanLines(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"fmt"
	"path/filepath"
	"strings"

	"payee-scan/internal/observability"
)

// ProcessedContent represents message text read from an input file
type ProcessedContent struct {
	OriginalPath string
	Filename     string

	// Extracted content
	Text string

	// Content metadata
	Format    string
	PageCount int
	WordCount int
	LineCount int

	ProcessorType string
}

// Preprocessor interface defines methods for turning input files into text
type Preprocessor interface {
	// CanProcess checks if this preprocessor can handle the given file
	CanProcess(filePath string) bool

	// Process extracts text from the file
	Process(filePath string) (*ProcessedContent, error)

	// GetName returns the name of this preprocessor
	GetName() string

	// SetObserver sets the observability component
	SetObserver(observer *observability.StandardObserver)
}

// PreprocessorManager dispatches files to the first preprocessor that accepts them
type PreprocessorManager struct {
	preprocessors []Preprocessor
}

// NewPreprocessorManager creates a manager with the PDF and plain text
// preprocessors registered, PDF first
func NewPreprocessorManager(observer *observability.StandardObserver) *PreprocessorManager {
	pm := &PreprocessorManager{}
	pm.RegisterPreprocessor(NewPDFPreprocessor())
	pm.RegisterPreprocessor(NewPlainTextPreprocessor())
	for _, p := range pm.preprocessors {
		p.SetObserver(observer)
	}
	return pm
}

// RegisterPreprocessor adds a preprocessor to the manager
func (pm *PreprocessorManager) RegisterPreprocessor(p Preprocessor) {
	pm.preprocessors = append(pm.preprocessors, p)
}

// GetPreprocessor returns the appropriate preprocessor for a file, or nil if none found
func (pm *PreprocessorManager) GetPreprocessor(filePath string) Preprocessor {
	for _, p := range pm.preprocessors {
		if p.CanProcess(filePath) {
			return p
		}
	}
	return nil
}

// ProcessFile reads filePath with the matching preprocessor
func (pm *PreprocessorManager) ProcessFile(filePath string) (*ProcessedContent, error) {
	p := pm.GetPreprocessor(filePath)
	if p == nil {
		return nil, fmt.Errorf("no preprocessor for %s", filepath.Base(filePath))
	}
	content, err := p.Process(filePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.GetName(), err)
	}
	return content, nil
}

func countStats(content *ProcessedContent) {
	content.WordCount = len(strings.Fields(content.Text))
	content.LineCount = 0
	if content.Text != "" {
		content.LineCount = strings.Count(content.Text, "\n") + 1
	}
}

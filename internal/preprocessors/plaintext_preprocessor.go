// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package preprocessors

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"payee-scan/internal/observability"
)

// ErrBinaryContent is returned for files that are not UTF-8 text
var ErrBinaryContent = errors.New("file does not contain UTF-8 text")

// PlainTextPreprocessor reads pasted messages saved as text files
type PlainTextPreprocessor struct {
	observer *observability.StandardObserver
	maxBytes int64
}

// NewPlainTextPreprocessor creates a new plain text preprocessor
func NewPlainTextPreprocessor() *PlainTextPreprocessor {
	return &PlainTextPreprocessor{maxBytes: 10 << 20}
}

// SetObserver sets the observability component
func (ptp *PlainTextPreprocessor) SetObserver(observer *observability.StandardObserver) {
	ptp.observer = observer
}

// GetName returns the name of this preprocessor
func (ptp *PlainTextPreprocessor) GetName() string {
	return "Plain Text Preprocessor"
}

// CanProcess accepts everything except PDF, so that files without an
// extension and exported chats (.txt, .log, .csv) are read as text
func (ptp *PlainTextPreprocessor) CanProcess(filePath string) bool {
	return strings.ToLower(filepath.Ext(filePath)) != ".pdf"
}

// Process reads the file, strips a UTF-8 byte order mark and rejects binary data
func (ptp *PlainTextPreprocessor) Process(filePath string) (*ProcessedContent, error) {
	var finishTiming func(bool, map[string]interface{})
	if ptp.observer != nil {
		finishTiming = ptp.observer.StartTiming("plaintext_preprocessor", "process_file", filePath)
	}

	content, err := ptp.read(filePath)

	if finishTiming != nil {
		metadata := map[string]interface{}{}
		if content != nil {
			metadata["line_count"] = content.LineCount
			metadata["word_count"] = content.WordCount
		}
		if err != nil {
			metadata["error"] = err.Error()
		}
		finishTiming(err == nil, metadata)
	}
	return content, err
}

func (ptp *PlainTextPreprocessor) read(filePath string) (*ProcessedContent, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", filePath)
	}
	if info.Size() > ptp.maxBytes {
		return nil, fmt.Errorf("file size %d exceeds limit of %d bytes", info.Size(), ptp.maxBytes)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	data = trimBOM(data)
	if !utf8.Valid(data) || strings.ContainsRune(string(data), 0) {
		return nil, ErrBinaryContent
	}

	content := &ProcessedContent{
		OriginalPath:  filePath,
		Filename:      filepath.Base(filePath),
		Text:          string(data),
		Format:        "text",
		PageCount:     1,
		ProcessorType: ptp.GetName(),
	}
	countStats(content)
	return content, nil
}

func trimBOM(data []byte) []byte {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return data[3:]
	}
	return data
}

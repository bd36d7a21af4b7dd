// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"
	"time"
)

// identifierRun matches digit runs long enough to be a phone or account number
var identifierRun = regexp.MustCompile(`\d{6,}`)

// MaskIdentifiers keeps the last four digits of every long digit run so
// traces never carry a full phone or account number.
func MaskIdentifiers(s string) string {
	return identifierRun.ReplaceAllStringFunc(s, func(run string) string {
		return strings.Repeat("*", len(run)-4) + run[len(run)-4:]
	})
}

// DebugObserver writes an indented trace of the extraction pipeline
type DebugObserver struct {
	*StandardObserver
	mu     sync.Mutex
	indent int
}

// NewDebugObserver creates a debug observer writing traces to writer
func NewDebugObserver(writer io.Writer) *DebugObserver {
	return &DebugObserver{
		StandardObserver: NewStandardObserver(ObservabilityDebug, writer),
	}
}

func (d *DebugObserver) prefix() string {
	return strings.Repeat("  ", d.indent)
}

// StartStep opens a nested step and returns the function that closes it
func (d *DebugObserver) StartStep(component, step, source string) func(success bool, details string) {
	start := time.Now()

	d.mu.Lock()
	fmt.Fprintf(d.writer, "%s🔄 %s: %s (%s)\n", d.prefix(), component, step, source)
	d.indent++
	d.mu.Unlock()

	return func(success bool, details string) {
		d.mu.Lock()
		defer d.mu.Unlock()
		if d.indent > 0 {
			d.indent--
		}

		status, verb := "✅", "completed"
		if !success {
			status, verb = "❌", "failed"
		}
		fmt.Fprintf(d.writer, "%s%s %s: %s %s (%dms) %s\n",
			d.prefix(), status, component, step, verb, time.Since(start).Milliseconds(), MaskIdentifiers(details))
	}
}

// LogDetail logs a detail within the current step. Long digit runs are masked.
func (d *DebugObserver) LogDetail(component, detail string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintf(d.writer, "%s   → %s: %s\n", d.prefix(), component, MaskIdentifiers(detail))
}

// LogProgress logs how many messages of a batch are done
func (d *DebugObserver) LogProgress(component string, completed, total int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fmt.Fprintf(d.writer, "%s   📊 %s: %d/%d messages\n", d.prefix(), component, completed, total)
}

// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import "io"

// Observable interface for all components that need observability
type Observable interface {
	// GetComponentName returns the component identifier
	GetComponentName() string

	// SetObserver attaches the observer used for timing and debug output
	SetObserver(observer *StandardObserver)
}

// New builds the observer for the requested verbosity. In debug mode the
// returned observer also carries a DebugObserver for step traces.
func New(debug bool, writer io.Writer) *StandardObserver {
	if !debug {
		return NewStandardObserver(ObservabilityMetrics, writer)
	}
	debugObs := NewDebugObserver(writer)
	debugObs.StandardObserver.DebugObserver = debugObs
	return debugObs.StandardObserver
}

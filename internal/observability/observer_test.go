// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartTimingDebugWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	obs := NewStandardObserver(ObservabilityDebug, &buf).WithRequestID("req-fixed")

	finish := obs.StartTiming("engine", "extract", "NG")
	finish(true, map[string]interface{}{"mode": "account"})

	var data StandardObservabilityData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &data))
	assert.Equal(t, "engine", data.Component)
	assert.Equal(t, "extract", data.Operation)
	assert.Equal(t, "req-fixed", data.RequestID)
	assert.Equal(t, "NG", data.Source)
	assert.True(t, data.Success)
	assert.Equal(t, "account", data.Metadata["mode"])
}

func TestMetricsLevelIsSilent(t *testing.T) {
	var buf bytes.Buffer
	obs := NewStandardObserver(ObservabilityMetrics, &buf)
	obs.StartTiming("engine", "extract", "")(true, nil)
	assert.Empty(t, buf.String())

	off := NewStandardObserver(ObservabilityOff, &buf)
	off.StartTiming("engine", "extract", "")(false, nil)
	assert.Empty(t, buf.String())
}

func TestRequestIDs(t *testing.T) {
	a, b := NewRequestID(), NewRequestID()
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "req-"))

	obs := NewStandardObserver(ObservabilityDebug, &bytes.Buffer{}).WithRequestID("")
	assert.NotEmpty(t, obs.RequestID())
}

func TestDebugObserverSteps(t *testing.T) {
	var buf bytes.Buffer
	obs := New(true, &buf)
	require.NotNil(t, obs.DebugObserver)

	done := obs.DebugObserver.StartStep("scanner", "scan", "clipboard")
	obs.DebugObserver.LogDetail("scanner", "3 candidates")
	done(true, "ok")

	out := buf.String()
	assert.Contains(t, out, "scanner: scan (clipboard)")
	assert.Contains(t, out, "  → scanner: 3 candidates")
	assert.Contains(t, out, "scan completed")
}

func TestNewWithoutDebug(t *testing.T) {
	obs := New(false, &bytes.Buffer{})
	assert.Nil(t, obs.DebugObserver)
	assert.Equal(t, ObservabilityMetrics, obs.Level())
}

func TestDebugObserverMasksIdentifiers(t *testing.T) {
	var buf bytes.Buffer
	obs := New(true, &buf)

	done := obs.DebugObserver.StartStep("engine", "extract", "phone")
	obs.DebugObserver.LogDetail("engine", "phone candidate 0022796316152")
	obs.DebugObserver.LogProgress("main", 2, 5)
	done(false, "account 9035941238 bad checksum")

	out := buf.String()
	assert.Contains(t, out, "phone candidate *********6152")
	assert.Contains(t, out, "account ******1238 bad checksum")
	assert.Contains(t, out, "main: 2/5 messages")
	assert.Contains(t, out, "extract failed")
	assert.NotContains(t, out, "9035941238")
}

func TestMaskIdentifiers(t *testing.T) {
	tests := []struct{ in, want string }{
		{"", ""},
		{"NE 70 000", "NE 70 000"},
		{"12345", "12345"},
		{"123456", "**3456"},
		{"iban NG12 0123456784", "iban NG12 ******6784"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MaskIdentifiers(tt.in), tt.in)
	}
}

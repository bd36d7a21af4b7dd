// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"errors"
	"fmt"
)

// ErrMalformedInput marks a request that breaks the engine's contract.
// It is the only error Extract returns.
var ErrMalformedInput = errors.New("malformed input")

// MalformedInputError describes which request field was rejected
type MalformedInputError struct {
	Field  string
	Value  string
	Reason string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed input: %s %q: %s", e.Field, e.Value, e.Reason)
}

// Unwrap lets errors.Is match ErrMalformedInput
func (e *MalformedInputError) Unwrap() error {
	return ErrMalformedInput
}

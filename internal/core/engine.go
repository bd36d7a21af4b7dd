// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"errors"
	"fmt"
	"strings"

	"payee-scan/internal/detector"
	"payee-scan/internal/extractor"
	"payee-scan/internal/observability"
	"payee-scan/internal/rules"
	"payee-scan/internal/validators/account"
	"payee-scan/internal/validators/phone"
)

// Mode selects which identifier is extracted and validated
type Mode string

const (
	ModePhone   Mode = "phone"
	ModeAccount Mode = "account"
)

// Validity flag values
const (
	Yes = "yes"
	No  = "no"
)

// Messages placed in Result.ValidationError by the engine itself
const (
	ErrTextUnsupportedCountry = "unsupported country"
	ErrTextNoPhone            = "no phone number found"
	ErrTextNoAccount          = "no account number found"
)

// ParseMode accepts "phone" or "account" in any case
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModePhone:
		return ModePhone, nil
	case ModeAccount:
		return ModeAccount, nil
	}
	return "", &MalformedInputError{Field: "mode", Value: s, Reason: "must be phone or account"}
}

// Request is one extraction call
type Request struct {
	Text        string
	CountryCode string
	Mode        Mode
}

// Result is the flat record returned for every request. Every field is
// always present; flags are "yes" or "no".
type Result struct {
	FullName           string `json:"full_name" yaml:"full_name"`
	PhoneNumber        string `json:"phone_number" yaml:"phone_number"`
	BankName           string `json:"bank_name" yaml:"bank_name"`
	City               string `json:"city" yaml:"city"`
	AccountNumber      string `json:"account_number" yaml:"account_number"`
	AccountNumberValid string `json:"account_number_valid" yaml:"account_number_valid"`
	PhoneNumberValid   string `json:"phone_number_valid" yaml:"phone_number_valid"`
	ValidationError    string `json:"validation_error" yaml:"validation_error"`
}

// Engine runs the scan, select, validate and assemble pipeline. It holds no
// per-request state and is safe for concurrent use.
type Engine struct {
	registry *rules.Registry
	scanner  *detector.Scanner
	phone    *phone.Validator
	account  *account.Validator
	observer *observability.StandardObserver
}

// NewEngine creates an engine over the given rules and scanner keywords
func NewEngine(registry *rules.Registry, keywords detector.Keywords) *Engine {
	return &Engine{
		registry: registry,
		scanner:  detector.NewScanner(keywords),
		phone:    phone.NewValidator(),
		account:  account.NewValidator(),
	}
}

// SetObserver sets the observability component on the engine and its stages
func (e *Engine) SetObserver(observer *observability.StandardObserver) {
	e.observer = observer
	e.scanner.SetObserver(observer)
	e.phone.SetObserver(observer)
	e.account.SetObserver(observer)
}

// WithObserver returns an engine sharing e's rules and keywords whose
// stages all report to observer, so one request's operations carry the
// same request id. e is left unchanged.
func (e *Engine) WithObserver(observer *observability.StandardObserver) *Engine {
	c := &Engine{
		registry: e.registry,
		scanner:  e.scanner.WithObserver(observer),
		phone:    phone.NewValidator(),
		account:  account.NewValidator(),
		observer: observer,
	}
	c.phone.SetObserver(observer)
	c.account.SetObserver(observer)
	return c
}

// GetComponentName returns the component identifier
func (e *Engine) GetComponentName() string {
	return "extraction_engine"
}

// Registry returns the country rules the engine validates against
func (e *Engine) Registry() *rules.Registry {
	return e.registry
}

// Extract pulls the payee fields out of req.Text and validates the
// identifier for req.Mode. Bad data is reported inside the Result; the
// only error is a MalformedInputError for an unknown mode.
func (e *Engine) Extract(req Request) (Result, error) {
	if req.Mode != ModePhone && req.Mode != ModeAccount {
		return Result{}, &MalformedInputError{Field: "mode", Value: string(req.Mode), Reason: "must be phone or account"}
	}

	var finishTiming func(bool, map[string]interface{})
	var finishStep func(bool, string)
	if e.observer != nil {
		finishTiming = e.observer.StartTiming(e.GetComponentName(), "extract", rules.NormalizeCode(req.CountryCode))
		if e.observer.DebugObserver != nil {
			finishStep = e.observer.DebugObserver.StartStep(e.GetComponentName(), "extract", string(req.Mode))
		}
	}

	res := Result{AccountNumberValid: No, PhoneNumberValid: No}
	var candidates []detector.Candidate
	if strings.TrimSpace(req.Text) != "" {
		candidates = e.scanner.Scan(req.Text)
		e.logDetail(fmt.Sprintf("%d candidates", len(candidates)))

		party := extractor.SelectParty(candidates)
		res.FullName, res.BankName, res.City = party.FullName, party.BankName, party.City

		switch req.Mode {
		case ModePhone:
			e.assemblePhone(&res, candidates, req.CountryCode)
		case ModeAccount:
			e.assembleAccount(&res, candidates, req.CountryCode)
		}
	}
	finalize(&res, req.Mode)

	valid := res.PhoneNumberValid == Yes || res.AccountNumberValid == Yes
	if finishStep != nil {
		finishStep(valid, res.ValidationError)
	}
	if finishTiming != nil {
		finishTiming(valid, map[string]interface{}{
			"mode":       string(req.Mode),
			"candidates": len(candidates),
			"error":      res.ValidationError,
		})
	}
	return res, nil
}

func (e *Engine) assemblePhone(res *Result, candidates []detector.Candidate, country string) {
	rule, err := e.registry.LookupPhoneRule(country)
	if err != nil {
		// best effort: report what was found without judging it
		if c, ok := extractor.SelectPhone(candidates, 0); ok {
			res.PhoneNumber = phone.Normalize(c.Text, rules.PhoneRule{}).Number
		}
		res.ValidationError = unsupported(err)
		return
	}

	c, ok := extractor.SelectPhone(candidates, rule.MinNSNLength())
	if !ok {
		res.ValidationError = ErrTextNoPhone
		return
	}
	e.logDetail("phone candidate " + c.Text)

	out := e.phone.Validate(c.Text, rule)
	res.PhoneNumber = out.Number
	if out.Valid {
		res.PhoneNumberValid = Yes
	} else {
		res.ValidationError = out.Reason
	}
}

func (e *Engine) assembleAccount(res *Result, candidates []detector.Candidate, country string) {
	rule, err := e.registry.LookupAccountRule(country)
	if err != nil {
		if c, ok := extractor.SelectAccount(candidates, false); ok {
			res.AccountNumber = account.Normalize(c.Text)
		}
		res.ValidationError = unsupported(err)
		return
	}

	c, ok := extractor.SelectAccount(candidates, rule.Charset == rules.CharsetAlnum)
	if !ok {
		res.ValidationError = ErrTextNoAccount
		return
	}
	e.logDetail("account candidate " + c.Text)

	out := e.account.Validate(c.Text, country, rule)
	res.AccountNumber = out.Number
	if out.Valid {
		res.AccountNumberValid = Yes
	} else {
		res.ValidationError = out.Reason
	}
}

func unsupported(err error) string {
	if errors.Is(err, rules.ErrUnsupportedCountry) {
		return ErrTextUnsupportedCountry
	}
	return err.Error()
}

// finalize enforces the record invariants whatever the stages produced
func finalize(res *Result, mode Mode) {
	if res.BankName != "" {
		res.City = ""
	}

	switch mode {
	case ModePhone:
		res.AccountNumber, res.AccountNumberValid = "", No
		if res.PhoneNumberValid == Yes {
			res.ValidationError = ""
		}
	case ModeAccount:
		res.PhoneNumber, res.PhoneNumberValid = "", No
		if res.AccountNumberValid == Yes {
			res.ValidationError = ""
		}
	}
}

func (e *Engine) logDetail(detail string) {
	if e.observer != nil && e.observer.DebugObserver != nil {
		e.observer.DebugObserver.LogDetail(e.GetComponentName(), detail)
	}
}

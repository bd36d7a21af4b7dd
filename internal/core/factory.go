// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"fmt"

	"payee-scan/internal/config"
	"payee-scan/internal/detector"
	"payee-scan/internal/rules"
)

// BuildEngine constructs the engine shared by the CLI and the web server.
// Pass nil for cfg to use the built-in rules and keywords.
func BuildEngine(cfg *config.Config) (*Engine, error) {
	registry, err := BuildRegistry(cfg)
	if err != nil {
		return nil, err
	}
	return NewEngine(registry, BuildKeywords(cfg)), nil
}

// BuildRegistry loads the built-in country rules, merged with the
// configured rules file when there is one
func BuildRegistry(cfg *config.Config) (*rules.Registry, error) {
	if cfg == nil || cfg.RulesFile == "" {
		return rules.Default()
	}
	registry, err := rules.Load(cfg.RulesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules file %s: %w", cfg.RulesFile, err)
	}
	return registry, nil
}

// BuildKeywords appends the configured scanner keywords to the built-ins
func BuildKeywords(cfg *config.Config) detector.Keywords {
	keywords := detector.DefaultKeywords()
	if cfg == nil {
		return keywords
	}
	return keywords.Merge(detector.Keywords{
		Banks:        cfg.Scanner.BankKeywords,
		GenericBanks: cfg.Scanner.GenericBankKeywords,
		Currencies:   cfg.Scanner.CurrencyTokens,
		Codes:        cfg.Scanner.CodeKeywords,
		Labels:       cfg.Scanner.LabelWords,
	})
}

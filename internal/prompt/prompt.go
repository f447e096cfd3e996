// Package prompt turns contract source text and a service tier into the
// prompt string and token budget sent to the inference server.
package prompt

import (
	"errors"
	"fmt"
	"strings"
)

// Tier is the service level that selects a prompt template and token budget.
type Tier string

const (
	Basic    Tier = "basic"
	Standard Tier = "standard"
	Premium  Tier = "premium"
)

// Wire names used by the HTTP API and the CLI.
const (
	PackageBronze = "bronze"
	PackageSilver = "silver"
	PackageGold   = "gold"

	DefaultPackage = PackageBronze
)

// Token budgets per tier. Unrecognized tiers get the smallest budget.
const (
	basicTokens    = 1000
	standardTokens = 2000
	premiumTokens  = 4000
	defaultTokens  = 500
)

// ErrInvalidInput is returned when the source text is empty.
var ErrInvalidInput = errors.New("source text is required")

// ParseTier maps a package name (bronze/silver/gold) to a Tier.
// Tier names are also accepted. Anything else is returned as an
// unrecognized Tier rather than an error; Build falls back for it.
func ParseTier(name string) Tier {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case PackageBronze, string(Basic):
		return Basic
	case PackageSilver, string(Standard):
		return Standard
	case PackageGold, string(Premium):
		return Premium
	default:
		return Tier(name)
	}
}

// Label returns a bounded name for t, suitable as a metrics label.
// Every unrecognized tier shares the label "default".
func (t Tier) Label() string {
	if t.Known() {
		return string(t)
	}
	return "default"
}

// Known reports whether t is one of the enumerated tiers.
func (t Tier) Known() bool {
	switch t {
	case Basic, Standard, Premium:
		return true
	}
	return false
}

// Build returns the prompt for sourceText at the given tier and the
// maximum number of tokens the model may generate for it.
func Build(sourceText string, tier Tier) (string, int, error) {
	if sourceText == "" {
		return "", 0, ErrInvalidInput
	}
	return fmt.Sprintf(templateFor(tier), sourceText), tokenLimitFor(tier), nil
}

// templateFor and tokenLimitFor each carry their own fallback.
func templateFor(tier Tier) string {
	switch tier {
	case Basic:
		return basicTemplate
	case Standard:
		return standardTemplate
	case Premium:
		return premiumTemplate
	default:
		return defaultTemplate
	}
}

func tokenLimitFor(tier Tier) int {
	switch tier {
	case Basic:
		return basicTokens
	case Standard:
		return standardTokens
	case Premium:
		return premiumTokens
	default:
		return defaultTokens
	}
}

const basicTemplate = `You are a smart contract security auditor. Perform a basic security review of the following contract.

Focus on:
- Obvious vulnerabilities (reentrancy, unchecked external calls, integer overflow/underflow)
- Access control mistakes
- A short list of recommendations

Keep the report concise.

Contract:
%s`

const standardTemplate = `You are a smart contract security auditor. Perform a standard security audit of the following contract.

Cover:
1. Vulnerabilities, each with a severity (critical, high, medium, low)
2. Access control and privilege review
3. Gas usage and obvious optimisations
4. Adherence to common token standards where relevant
5. Prioritised recommendations

Contract:
%s`

const premiumTemplate = `You are a senior smart contract security auditor. Perform a comprehensive audit of the following contract.

Provide:
1. Executive summary with an overall risk rating
2. Detailed vulnerability analysis, each finding with severity, location, impact and a fix
3. Access control, upgradeability and centralisation risks
4. Economic and business-logic attack vectors (front-running, price manipulation, flash loans)
5. Gas optimisation opportunities
6. Code quality and best-practice review
7. A prioritised remediation plan

Contract:
%s`

const defaultTemplate = `Analyze the following smart contract code and report any security issues you find:

%s`

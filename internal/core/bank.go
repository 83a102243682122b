package core

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Bank is a destination account that transfers may be credited to.
type Bank string

const (
	BankA Bank = "Bancolombia"
	BankB Bank = "Davivienda"
)

// DestinationBanks is the allow-list for transfer destinations, in reconciliation-row order.
var DestinationBanks = []Bank{BankA, BankB}

// NormalizeBank resolves a destination bank name case- and accent-insensitively.
func NormalizeBank(name string) (Bank, error) {
	key := foldKey(name)
	for _, b := range DestinationBanks {
		if key == foldKey(string(b)) {
			return b, nil
		}
	}
	return "", fmt.Errorf("%w: %q (accepted: %s, %s)", ErrInvalidDestinationBank, name, BankA, BankB)
}

// foldKey returns a comparison key: trimmed, single-spaced, accents stripped, case folded.
// Transformers are stateful, so a fresh chain is built on every call.
func foldKey(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return cases.Fold().String(stripped)
}

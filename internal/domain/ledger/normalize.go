package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Config controls how raw record fields are canonicalized into keys.
type Config struct {
	// AmountPrecision is the number of decimal places amounts are rounded
	// to before comparison (default: 2).
	AmountPrecision int32

	// CaseSensitive preserves letter case in normalized text when true.
	CaseSensitive bool

	// StripCurrency removes currency symbols and thousands separators
	// from descriptions.
	StripCurrency bool

	// SignInsensitive makes the amount key use the absolute value, so a
	// debit can match a credit of the same magnitude. Off by default.
	SignInsensitive bool

	// CompositeDescLen is how many characters of the normalized
	// description feed the composite key (default: 30).
	CompositeDescLen int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		AmountPrecision:  2,
		CaseSensitive:    false,
		StripCurrency:    true,
		SignInsensitive:  false,
		CompositeDescLen: 30,
	}
}

// Normalizer derives canonical comparison keys from raw records.
type Normalizer struct {
	config Config
}

// NewNormalizer creates a normalizer with the given config.
func NewNormalizer(config Config) *Normalizer {
	if config.CompositeDescLen <= 0 {
		config.CompositeDescLen = 30
	}
	return &Normalizer{config: config}
}

// Normalize returns a copy of records with derived keys populated.
// Input records are not mutated.
func (n *Normalizer) Normalize(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = n.NormalizeRecord(r)
	}
	return out
}

// NormalizeRecord computes the derived keys for a single record.
//
// A record with an unparseable date or amount never raises; it receives
// per-record sentinel keys that cannot equal any other record's keys, so
// it fails every downstream equality and tolerance check.
func (n *Normalizer) NormalizeRecord(r Record) Record {
	if !r.Usable() {
		sentinel := fmt.Sprintf("invalid:%s:%d", r.Origin, r.OriginalIndex)
		r.Invalid = true
		r.Keys = Keys{
			DateKey:         sentinel,
			AmountKey:       sentinel,
			DescriptionNorm: n.NormalizeText(r.Description),
			ReferenceNorm:   "",
			CompositeKey:    sentinel,
		}
		return r
	}

	amount := r.Amount.Round(n.config.AmountPrecision)
	if n.config.SignInsensitive {
		amount = amount.Abs()
	}

	keys := Keys{
		DateKey:         r.Date.Format("2006-01-02"),
		AmountKey:       amount.StringFixed(n.config.AmountPrecision),
		DescriptionNorm: n.NormalizeText(r.Description),
		ReferenceNorm:   n.NormalizeReference(r.Reference),
	}
	keys.CompositeKey = n.compositeKey(keys)
	r.Keys = keys
	return r
}

// NormalizeText canonicalizes free text: trims, collapses internal
// whitespace, optionally lower-cases, and strips currency formatting.
func (n *Normalizer) NormalizeText(s string) string {
	normalized := strings.Join(strings.Fields(s), " ")

	if !n.config.CaseSensitive {
		normalized = strings.ToLower(normalized)
	}

	if n.config.StripCurrency {
		replacer := strings.NewReplacer("$", "", "€", "", "£", "", ",", "")
		normalized = replacer.Replace(normalized)
	}

	return strings.TrimSpace(normalized)
}

// NormalizeReference canonicalizes a reference identifier by removing
// separator characters so "INV-001", "inv_001" and "INV 001" all compare
// equal.
func (n *Normalizer) NormalizeReference(ref string) string {
	normalized := strings.TrimSpace(ref)
	if normalized == "" {
		return ""
	}

	if !n.config.CaseSensitive {
		normalized = strings.ToLower(normalized)
	}

	replacer := strings.NewReplacer("-", "", "_", "", " ", "")
	return replacer.Replace(normalized)
}

// compositeKey hashes the canonical fields into an equality shortcut.
// Records with different raw text but identical canonical text collide
// intentionally; that collision is the matching mechanism.
func (n *Normalizer) compositeKey(k Keys) string {
	desc := truncate(k.DescriptionNorm, n.config.CompositeDescLen)
	payload := strings.Join([]string{k.DateKey, k.AmountKey, desc, k.ReferenceNorm}, "|")
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// truncate cuts a string to at most limit runes.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

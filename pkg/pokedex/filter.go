// Package pokedex turns fetched records into the printed report: the type
// filter and the Spanish-labelled text blocks.
package pokedex

import (
	"strings"

	"github.com/Sternrassler/pokedex-client/pkg/pokeapi"
)

// NormalizeToken lowercases the filter argument and trims surrounding blanks.
func NormalizeToken(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Filter returns the records whose types contain token, in input order.
// An empty token keeps every record. Record types are compared as-is.
func Filter(records []pokeapi.Record, token string) []pokeapi.Record {
	if token == "" {
		return records
	}

	kept := make([]pokeapi.Record, 0, len(records))
	for _, rec := range records {
		if rec.HasType(token) {
			kept = append(kept, rec)
		}
	}
	return kept
}

package pokedex

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Sternrassler/pokedex-client/pkg/pokeapi"
)

// Separator frames every record block.
var Separator = strings.Repeat("-", 40)

// Reporter writes records as fixed-format text blocks.
type Reporter struct {
	w io.Writer
}

// NewReporter creates a reporter writing to w.
func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

// Render prints one block per record followed by a closing separator.
// With no records it prints only the no-results line for token.
func (r *Reporter) Render(records []pokeapi.Record, token string) error {
	bw := bufio.NewWriter(r.w)

	if len(records) == 0 {
		fmt.Fprintln(bw, NoResultsMessage(token))
		return bw.Flush()
	}

	for _, rec := range records {
		fmt.Fprintln(bw, Separator)
		fmt.Fprintf(bw, "ID: %d\n", rec.ID)
		fmt.Fprintf(bw, "Nombre: %s\n", Capitalize(rec.Name))
		fmt.Fprintf(bw, "Tipos: %s\n", strings.Join(rec.Types, ", "))
		fmt.Fprintf(bw, "Altura: %d\n", rec.Height)
		fmt.Fprintf(bw, "Peso: %d\n", rec.Weight)
	}
	fmt.Fprintln(bw, Separator)

	return bw.Flush()
}

// NoResultsMessage is the single line printed for an empty report.
func NoResultsMessage(token string) string {
	if token == "" {
		return "No se encontraron Pokémon."
	}
	return fmt.Sprintf("No se encontraron Pokémon del tipo '%s'.", token)
}

// Capitalize upper-cases the first rune and lower-cases the rest.
func Capitalize(s string) string {
	first, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(first)) + strings.ToLower(s[size:])
}

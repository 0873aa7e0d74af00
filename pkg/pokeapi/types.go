package pokeapi

// Reference points at one detail document. Produced by the list endpoint.
type Reference struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Record is the display-ready projection of a detail document.
// Types keep the order the API returned them in.
type Record struct {
	ID     int      `json:"id"`
	Name   string   `json:"name"`
	Types  []string `json:"types"`
	Height int      `json:"height"`
	Weight int      `json:"weight"`
}

// HasType reports whether t is one of the record's types. The comparison is exact.
func (r Record) HasType(t string) bool {
	for _, have := range r.Types {
		if have == t {
			return true
		}
	}
	return false
}

// listResponse is the collection document: GET /pokemon?limit=N.
type listResponse struct {
	Count   int          `json:"count"`
	Results *[]Reference `json:"results"`
}

// detailResponse is the subset of GET /pokemon/{id}/ that a Record needs.
// Pointers distinguish a missing field from a zero value.
type detailResponse struct {
	ID     *int        `json:"id"`
	Name   *string     `json:"name"`
	Types  *[]typeSlot `json:"types"`
	Height *int        `json:"height"`
	Weight *int        `json:"weight"`
}

type typeSlot struct {
	Slot int            `json:"slot"`
	Type *namedResource `json:"type"`
}

type namedResource struct {
	Name *string `json:"name"`
	URL  string  `json:"url"`
}

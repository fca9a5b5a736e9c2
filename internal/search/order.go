package search

import (
	"sort"

	"github.com/gcbaptista/searchlab/config"
	"github.com/gcbaptista/searchlab/index"
	internalErrors "github.com/gcbaptista/searchlab/internal/errors"
)

// Presentation selects the order in which matches are shown.
type Presentation struct {
	Mode  config.SortMode
	Field string // Stored text field compared in alphabetical mode
}

// Ranked orders by descending score, then ascending DocID.
func Ranked() Presentation {
	return Presentation{Mode: config.SortRanked}
}

// Alphabetical orders by the stored value of field, then ascending DocID.
// Scores are kept on the matches but play no part in the order.
func Alphabetical(field string) Presentation {
	return Presentation{Mode: config.SortAlphabetical, Field: field}
}

// Order returns a copy of matches sorted for presentation.
func Order(idx *index.Index, matches []Match, p Presentation) ([]Match, error) {
	if err := p.Mode.Validate(); err != nil {
		return nil, err
	}
	ordered := append([]Match(nil), matches...)
	if p.Mode == config.SortRanked {
		sortRanked(ordered)
		return ordered, nil
	}

	if p.Field == "" {
		return nil, internalErrors.NewValidationError("sort_field", "alphabetical order needs a field")
	}
	keys := make(map[uint32]string, len(ordered))
	for _, m := range ordered {
		doc, _ := idx.Document(m.DocID)
		keys[m.DocID], _ = doc.TextField(p.Field)
	}
	sort.Slice(ordered, func(i, j int) bool {
		ki, kj := keys[ordered[i].DocID], keys[ordered[j].DocID]
		if ki != kj {
			return ki < kj
		}
		return ordered[i].DocID < ordered[j].DocID
	})
	return ordered, nil
}

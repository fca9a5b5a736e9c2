package index

import (
	"fmt"
	"sort"
)

// Posting records that a term occurs Freq times in one field of document DocID.
type Posting struct {
	DocID uint32 // Internal numeric ID, see store.DocumentStore
	Freq  int    // Term frequency within the field
}

// PostingList is a slice of Posting ordered by DocID, strictly increasing.
type PostingList []Posting

// DocIDs returns the document IDs of the list, in ascending order.
func (pl PostingList) DocIDs() []uint32 {
	ids := make([]uint32, len(pl))
	for i, p := range pl {
		ids[i] = p.DocID
	}
	return ids
}

// Find returns the posting for docID using binary search.
func (pl PostingList) Find(docID uint32) (Posting, bool) {
	i := sort.Search(len(pl), func(i int) bool { return pl[i].DocID >= docID })
	if i < len(pl) && pl[i].DocID == docID {
		return pl[i], true
	}
	return Posting{}, false
}

// validate checks ordering, uniqueness, positive frequencies and that every ID is below docCount.
func (pl PostingList) validate(docCount int) error {
	for i, p := range pl {
		if p.Freq <= 0 {
			return fmt.Errorf("posting for document %d has frequency %d", p.DocID, p.Freq)
		}
		if int(p.DocID) >= docCount {
			return fmt.Errorf("posting references unknown document %d", p.DocID)
		}
		if i > 0 && pl[i-1].DocID >= p.DocID {
			return fmt.Errorf("postings not strictly increasing at document %d", p.DocID)
		}
	}
	return nil
}

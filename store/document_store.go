package store

import (
	"fmt"

	"github.com/gcbaptista/searchlab/model"
)

// DocumentStore holds the stored field values of every indexed document,
// addressed by internal ID. It is filled once by Add during a build and read-only
// afterwards, so it carries no lock.
type DocumentStore struct {
	docs                   []model.Document  // Internal ID to full document
	externalIDtoInternalID map[string]uint32 // User-provided ID to internal uint32 ID
}

// NewDocumentStore returns an empty store with room for n documents.
func NewDocumentStore(n int) *DocumentStore {
	return &DocumentStore{
		docs:                   make([]model.Document, 0, n),
		externalIDtoInternalID: make(map[string]uint32, n),
	}
}

// Add stores a copy of doc under the next internal ID and returns that ID.
func (ds *DocumentStore) Add(doc model.Document) (uint32, error) {
	if _, exists := ds.externalIDtoInternalID[doc.ID]; exists {
		return 0, fmt.Errorf("duplicate document ID '%s'", doc.ID)
	}
	internalID := uint32(len(ds.docs))
	ds.docs = append(ds.docs, doc.Clone())
	ds.externalIDtoInternalID[doc.ID] = internalID
	return internalID, nil
}

// Get returns the stored document for an internal ID. Its maps must not be modified.
func (ds *DocumentStore) Get(internalID uint32) (model.Document, bool) {
	if int(internalID) >= len(ds.docs) {
		return model.Document{}, false
	}
	return ds.docs[internalID], true
}

// Lookup maps an external document ID to its internal ID.
func (ds *DocumentStore) Lookup(documentID string) (uint32, bool) {
	id, ok := ds.externalIDtoInternalID[documentID]
	return id, ok
}

// Len returns the number of stored documents. Internal IDs are 0..Len()-1.
func (ds *DocumentStore) Len() int {
	return len(ds.docs)
}

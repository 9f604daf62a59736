package api

import "encoding/json"

// CollectionRef is the canonical (id, label) pair identifying one remote
// collection after matching caller input against the collection index.
// Immutable once produced.
type CollectionRef struct {
	ID    string
	Label string
}

// IndexEntry is one collection in a user's collection index. The remote API
// serves ids as bare integers; json.Number keeps them intact either way.
type IndexEntry struct {
	ID    json.Number `json:"id"`
	Label string      `json:"label"`
}

// Asset is one wallpaper entry on a listing page. Path is the full URL of
// the image file.
type Asset struct {
	ID   string `json:"id"`
	Path string `json:"path"`
}

// ListingPage is one decoded page of a collection listing. It is transient:
// the walker reads the pagination metadata and the asset entries, then
// discards it.
type ListingPage struct {
	Assets      []Asset
	CurrentPage int
	LastPage    int
}

// indexEnvelope mirrors the collection index response body. A non-empty
// Error means the API reported a failure despite the 200 transport status.
type indexEnvelope struct {
	Error string       `json:"error"`
	Data  []IndexEntry `json:"data"`
}

// listingEnvelope mirrors one listing page response body.
type listingEnvelope struct {
	Error string  `json:"error"`
	Data  []Asset `json:"data"`
	Meta  struct {
		CurrentPage int `json:"current_page"`
		LastPage    int `json:"last_page"`
	} `json:"meta"`
}

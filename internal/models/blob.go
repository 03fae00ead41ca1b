package models

// BlobRef identifies an object written to the blob store.
type BlobRef struct {
	ID       string // object key
	Location string // public or endpoint URL
}

// Package models defines the persisted domain records for Divvy.
//
// The records here are what the storage layer reads and writes once an
// expense draft has passed validation. The draft itself, with its payer
// ledger and split strategies, lives in internal/expense; these types only
// capture its final, reconciled shape.
//
// All monetary fields are int64 minor currency units (cents). Relationships
// use ID strings rather than pointers to avoid circular references.
package models

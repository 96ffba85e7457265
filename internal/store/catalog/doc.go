// Package catalog declares the store schema: the five collections, their key
// columns and their secondary indexes.
//
// # Overview
//
// Every query in internal/store/query is built from these declarations, and
// the transaction coordinator uses the declaration order as its lock order.
// The physical schema itself is created by the goose migrations in
// internal/store/migrations; Verify checks that the two agree after a store is
// opened.
//
// Key Types
//
//   - type Collection: table name, key column, insert columns, indexes
//   - type Index: logical index name mapped to a column and uniqueness
//
// Typical Usage
//
//	c, ix, err := catalog.Lookup(catalog.Accounts, catalog.IndexByEmail)
//	if err != nil { ... } // unknown names are ErrInvalidArgument
package catalog

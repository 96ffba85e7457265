// Package txn is the transaction coordinator. Domain operations hand it the
// collections they touch and a body; the coordinator opens the transaction,
// serializes writers per collection and guarantees all-or-nothing commits.
//
// Typical Usage
//
//	listing, err := txn.Run(ctx, coord, txn.Write(catalog.Voices, catalog.Listings),
//	    func(ctx context.Context, tx dbx.DBTX) (*models.MarketplaceListing, error) {
//	        ...
//	    })
package txn

// Package order provides the Order aggregate processed by the order pipeline.
//
// The package includes:
//   - Order: identity, product, price and timestamps with validated construction
//   - Status: the forward-only lifecycle Pending -> Processing -> Completed,
//     with Cancelled reachable from Pending
//
// Orders are created Pending by the producer path and mutated only by the
// order-processing worker. Storage adapters rebuild them through RestoreOrder
// and stamp mutations through Touch.
package order

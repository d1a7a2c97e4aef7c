// Package post implements the posts feature: CRUD plus a realtime stream of
// newly created posts pushed to DataStar clients over SSE. Creation events
// travel through the broadcast package, so a single node uses the in-memory
// fan-out and a multi-node deployment swaps in the Redis adapter without
// touching this package.
package post

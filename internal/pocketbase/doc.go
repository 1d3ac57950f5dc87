// Package pocketbase is a small client for the records/auth REST API that backs
// the storefront. Every call is a single HTTP round trip; the package does not
// retry or cache.
//
// Typed access goes through Collection:
//
//	products := pocketbase.Collection[models.Product](client, "products")
//	page, err := products.GetList(ctx, 1, 8, pocketbase.ListOptions{Sort: "-created"})
//
// Requests are authorized with the token stored in the context by WithToken.
package pocketbase

// Package lifecycle holds the stateless rules every publishable resource
// shares: slug derivation, slug collision resolution, public visibility,
// the authorization gate for mutations, and media upload validation.
//
// Nothing here touches a store. Callers pass the store lookups in as
// functions so the same rules run against Postgres and against test fakes.
package lifecycle

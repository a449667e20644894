// Package store is telescope's local SQLite cache.
//
// It persists logged-in characters, the corporations (organizations) and
// alliances (affiliations) they belong to, and the single SSO session record.
// Every Write* method is an upsert keyed by id; WriteCharacter writes the
// referenced catalog rows first, inside the same transaction, so a character
// row never points at a missing organization or affiliation. Deleting a
// catalog row cascades to the characters that reference it.
//
// Remove* methods treat an empty id list as a no-op rather than "delete all".
package store

// Package remote implements client.DocumentStore over MongoDB.
//
// Each user is one document in a collection (users by default) whose _id is
// the identity provider's uid. FetchAll reads the whole collection in cursor
// order; Upsert merges fields into a document with $set and creates it when
// missing. Driver failures during FetchAll wrap common.ErrFetch; network
// failures wrap client.ErrUnavailable. The adapter never retries.
package remote

// Package client is the network and storage boundary of the nYtevibe client.
//
// # Overview
//
//  1. Client / HTTPClient: one JSON request per call against the REST API,
//     bearer token attached when given. Every HTTP status is returned as a
//     Response; only transport failures become errors (ErrUnavailable,
//     ErrCanceled).
//  2. The response normalizer (normalize.go): the backend's reply shapes
//     vary between deployments, so success detection (LoginSuccessRules),
//     error message extraction, error codes and retry-after values are
//     computed here rather than at call sites.
//  3. OpenStateDB / RunMigrations: the SQLite database holding the durable
//     credential record, migrated with embedded goose migrations.
package client

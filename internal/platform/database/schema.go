// Package database carries the SQL schema. Integration tests apply it to
// fresh containers; deployments run it through their own migration tooling.
package database

import _ "embed"

//go:embed schema.sql
var Schema string

// Package migrations carries the versioned SQL schema of the ledger.
package migrations

import "embed"

// FS holds every *.up.sql / *.down.sql pair, named for golang-migrate
//
//go:embed *.sql
var FS embed.FS

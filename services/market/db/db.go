// Package db embeds the market service's sqlite schema.
package db

import _ "embed"

//go:embed schema.sql
var Schema string

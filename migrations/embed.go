// Package migrations SQL миграции базы данных, встроенные в бинарник
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

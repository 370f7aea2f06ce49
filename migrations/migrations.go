// Package migrations 数据库结构, 编译进 migrate 二进制
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

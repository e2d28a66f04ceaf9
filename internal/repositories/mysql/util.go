// internal/repositories/mysql/util.go
package mysql

import "strings"

// placeholders menghasilkan "?, ?, ?, ..." sebanyak n untuk klausa IN.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}

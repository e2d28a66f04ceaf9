// internal/handlers/mcp/ready_flags.go
package mcp

// Flag readiness per repo; diset dari Set*Repo(..) masing-masing handler.
var (
	readyWellTests  bool
	readyProduction bool
)

// ReposStatus mengembalikan status siap/tidaknya setiap repo.
// Kalkulator murni (nodal, decline, gas lift, petro, ofm) tidak butuh repo.
func ReposStatus() map[string]bool {
	return map[string]bool{
		"well_tests": readyWellTests,
		"production": readyProduction,
	}
}

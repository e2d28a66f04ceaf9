// internal/util/ids.go
// Generator ID untuk request dan event stream

package util

import (
	"github.com/google/uuid"
)

func NewID() string {
	return uuid.New().String()
}

// RequestID mengambil X-Request-ID dari header, atau membuat baru.
func RequestID(header string) string {
	if header != "" {
		return header
	}
	return NewID()
}

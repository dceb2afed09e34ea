/*
Package utils provides helper functions for the portfolio backend.
*/
package utils

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateRequestID generates a unique request ID
func GenerateRequestID() string {
	return time.Now().Format("20060102150405") + "-" + ShortID()
}

// ShortID returns a short unique identifier suitable for request correlation
func ShortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

package helpers

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
)

const letterBytes = "abcdefghijklmnopqrstuvwxyz"

func randomLetters(n int) string {
	src := rand.New(rand.NewSource(time.Now().UnixNano()))
	b := make([]byte, n)
	for i := range b {
		b[i] = letterBytes[src.Intn(len(letterBytes))]
	}
	return string(b)
}

func GenerateResellerCode() string {
	return "R" + strings.ToUpper(randomLetters(5))
}

// GenerateInvoiceID builds the human-facing invoice number.
func GenerateInvoiceID() string {
	return fmt.Sprintf("INV%s%s",
		time.Now().Format("20060102150405"),
		strings.ToUpper(randomLetters(4)),
	)
}

// NewRefID tags one ledger mutation batch.
func NewRefID() string {
	return uuid.New().String()
}

func AbsInt64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

// Package nfc formats tag identifiers read from NFC/RFID hardware
package nfc

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// FormatUID renders raw identifier bytes as colon separated uppercase hex pairs.
func FormatUID(raw []byte) string {
	parts := make([]string, len(raw))
	for i, b := range raw {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, ":")
}

// NormalizeUID accepts reader output such as "04a12b3c", "04-A1-2B-3C" or
// "04:a1:2b:3c" and returns the canonical "04:A1:2B:3C" form.
func NormalizeUID(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("empty tag id")
	}

	compact := strings.NewReplacer(":", "", "-", "", " ", "").Replace(s)
	raw, err := hex.DecodeString(compact)
	if err != nil {
		return "", fmt.Errorf("invalid tag id %q: %w", s, err)
	}
	if len(raw) == 0 {
		return "", fmt.Errorf("empty tag id")
	}

	return FormatUID(raw), nil
}

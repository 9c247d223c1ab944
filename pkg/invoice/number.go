package invoice

import (
	"fmt"
	"math/rand"
	"time"
)

const numberSuffixCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateNumber produces a human-readable, time-ordered invoice identifier
// of the form INV-{YYYY}{MM}-{RANDOM6}. Uniqueness of the random suffix is
// probabilistic only; callers that persist invoice numbers should check for
// collisions and regenerate.
func GenerateNumber() string {
	return GenerateNumberAt(time.Now())
}

// GenerateNumberAt is GenerateNumber with an explicit timestamp.
func GenerateNumberAt(t time.Time) string {
	suffix := make([]byte, 6)
	for i := range suffix {
		suffix[i] = numberSuffixCharset[rand.Intn(len(numberSuffixCharset))]
	}
	return fmt.Sprintf("INV-%s-%s", t.Format("200601"), string(suffix))
}

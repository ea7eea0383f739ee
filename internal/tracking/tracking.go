// Package tracking mints human-readable correlation identifiers for
// certificate requests and appointments.
package tracking

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"barangay_portal_backend/platform/apperr"
)

// Prefix identifies the request family a tracking ID belongs to.
type Prefix string

const (
	// PrefixCertificate is the family prefix for certificate requests.
	PrefixCertificate Prefix = "CERT"
	// PrefixAppointment is the family prefix for appointments.
	PrefixAppointment Prefix = "APPT"
)

// MaxGenerateAttempts bounds regeneration when a minted ID collides with a
// stored one. The 4-digit suffix gives a 1-in-10,000 daily collision chance
// per prefix, so a handful of retries is plenty.
const MaxGenerateAttempts = 5

// Generator mints tracking IDs of the form PREFIX-YYYYMMDD-NNNN. IDs are
// sortable by day but not unique by construction; callers persist them under
// a unique constraint and regenerate on conflict. A single Generator is
// shared across concurrent requests, so the suffix source must be safe for
// concurrent use.
type Generator struct {
	now  func() time.Time
	intn func(n int) int
}

// NewGenerator creates a generator using wall-clock time. The suffix comes
// from the process-wide rand source, which is safe for concurrent callers.
func NewGenerator() *Generator {
	return &Generator{
		now:  time.Now,
		intn: rand.IntN,
	}
}

// NewGeneratorAt creates a generator with a fixed clock and a deterministic,
// mutex-guarded suffix sequence, for tests.
func NewGeneratorAt(now func() time.Time, seed uint64) *Generator {
	var mu sync.Mutex
	src := rand.New(rand.NewPCG(seed, seed))
	return &Generator{
		now: now,
		intn: func(n int) int {
			mu.Lock()
			defer mu.Unlock()
			return src.IntN(n)
		},
	}
}

// Generate mints a tracking ID for the given family.
func (g *Generator) Generate(prefix Prefix) (string, error) {
	if prefix != PrefixCertificate && prefix != PrefixAppointment {
		return "", apperr.Validation(fmt.Sprintf("unknown tracking prefix %q", prefix))
	}

	day := g.now().Format("20060102")
	suffix := g.intn(10000)
	return fmt.Sprintf("%s-%s-%04d", prefix, day, suffix), nil
}

package bloom

import (
	"math"

	"github.com/haukened/rr-stats/internal/stats/repos/wildcard"
)

// DefaultFPRate is used when the requested false-positive rate is outside (0,1).
const DefaultFPRate = 0.01

// sizer implements wildcard.BloomSizer:
//
//	m = - (n * ln p) / (ln 2)^2
//	k = (m / n) * ln 2
//
// Results are clamped to at least 1.
type sizer struct{}

// NewSizer returns a BloomSizer implementation.
func NewSizer() wildcard.BloomSizer { return sizer{} }

func (sizer) Size(n uint64, p float64) (uint64, uint8) {
	if n == 0 {
		n = 1
	}
	if !(p > 0 && p < 1) {
		p = DefaultFPRate
	}
	m := uint64(math.Ceil(-float64(n) * math.Log(p) / (math.Ln2 * math.Ln2)))
	if m == 0 {
		m = 1
	}
	k := math.Max(1, math.Round(float64(m)/float64(n)*math.Ln2))
	if k > math.MaxUint8 {
		k = math.MaxUint8
	}
	return m, uint8(k)
}

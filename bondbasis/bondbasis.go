// Package bondbasis computes the CDS-bond basis: the difference between a
// bond's asset-swap spread and the CDS par spread of the same issuer at a
// matched maturity, in basis points. Positive basis means the CDS trades
// wide of the bond (protection looks expensive relative to cash); negative
// means the reverse.
//
// Neither the ISDA reference CDS pricer nor spec.md's distillation computes
// this — it is a supplemented feature built from the teacher's otherwise
// dormant bond package (forward yield, ASW spread) paired with this
// module's own cds.Trade.ParSpread, since nothing else in scope exercises
// bond's asset-swap calculation once the swap-pricing subsystem it used to
// sit beside was removed.
package bondbasis

import (
	"fmt"

	"github.com/meenmo/cdscore/bond"
	"github.com/meenmo/cdscore/cdserr"
)

// Result is the basis decomposition: CDS spread minus bond ASW spread, both
// in basis points.
type Result struct {
	CDSParSpreadBP float64
	BondASWSpreadBP float64
	BasisBP         float64
}

// Compute returns the CDS-bond basis given a CDS par spread (as a decimal
// rate, e.g. 0.012 for 120bp) and a bond asset-swap spread already
// expressed in basis points (bond.ComputeASWSpread's own output unit).
func Compute(cdsParSpread, bondASWSpreadBP float64) (Result, error) {
	if cdsParSpread < 0 {
		return Result{}, fmt.Errorf("bondbasis: %w: negative CDS par spread %g", cdserr.InvalidArgument, cdsParSpread)
	}
	cdsBP := cdsParSpread * 1e4
	return Result{
		CDSParSpreadBP:  cdsBP,
		BondASWSpreadBP: bondASWSpreadBP,
		BasisBP:         cdsBP - bondASWSpreadBP,
	}, nil
}

// ComputeFromASW is the common entry point: it takes a CDS par spread and
// the bond.ASWResult computed by bond.ComputeASWSpread directly, so callers
// never have to unpack ASWResult.SpreadBP themselves.
func ComputeFromASW(cdsParSpread float64, asw bond.ASWResult) (Result, error) {
	return Compute(cdsParSpread, asw.SpreadBP)
}

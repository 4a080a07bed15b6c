package bridge

import (
	"fmt"
	"math"
)

// DefaultTolerance bounds floating-point drift allowed in group sums.
const DefaultTolerance = 1e-9

// Violation is one failed structural check on a crosswalk table.
type Violation struct {
	Rule   string
	Detail string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Rule, v.Detail)
}

// ValidateBridge runs the structural checks any well-formed crosswalk
// must satisfy, against freshly built rows or a re-read artifact:
// weight bounds, per-group summation, key uniqueness, the per-area
// sector cap, and canonical subsequence ordering. Returns all
// violations found; an empty slice means the table is sound.
func ValidateBridge(rows []BridgeRow, codes *SectorList, tol float64) []Violation {
	if tol <= 0 {
		tol = DefaultTolerance
	}
	var violations []Violation

	for _, r := range rows {
		if r.Weight < 0 || r.Weight > 1 || math.IsNaN(r.Weight) {
			violations = append(violations, Violation{
				Rule:   "weight bounds",
				Detail: fmt.Sprintf("weight %v out of [0,1] for (%s, %d, %s, %s)", r.Weight, r.AreaFIPS, r.Year, r.QCEWSector, r.IOSector),
			})
		}
	}

	sums := make(map[groupKey]float64)
	var groupOrder []groupKey
	for _, r := range rows {
		k := groupKey{r.AreaFIPS, r.Year, r.IOSector}
		if _, ok := sums[k]; !ok {
			groupOrder = append(groupOrder, k)
		}
		sums[k] += r.Weight
	}
	for _, k := range groupOrder {
		sum := sums[k]
		if math.Abs(sum-1) > tol && math.Abs(sum) > tol {
			violations = append(violations, Violation{
				Rule:   "group summation",
				Detail: fmt.Sprintf("group (%s, %d, %s) sums to %v, want 1 or 0", k.AreaFIPS, k.Year, k.IOSector, sum),
			})
		}
	}

	keySeen := make(map[rowKey]bool, len(rows))
	for _, r := range rows {
		k := rowKey{r.AreaFIPS, r.Year, r.QCEWSector, r.IOSector}
		if keySeen[k] {
			violations = append(violations, Violation{
				Rule:   "key uniqueness",
				Detail: fmt.Sprintf("duplicate key (%s, %d, %s, %s)", k.AreaFIPS, k.Year, k.QCEWSector, k.IOSector),
			})
		}
		keySeen[k] = true
	}

	if codes != nil {
		perArea := make(map[string]map[string]bool)
		var areaOrder []string
		for _, r := range rows {
			if perArea[r.AreaFIPS] == nil {
				perArea[r.AreaFIPS] = make(map[string]bool)
				areaOrder = append(areaOrder, r.AreaFIPS)
			}
			perArea[r.AreaFIPS][r.IOSector] = true
		}
		for _, area := range areaOrder {
			if n := len(perArea[area]); n > codes.Len() {
				violations = append(violations, Violation{
					Rule:   "sector cap",
					Detail: fmt.Sprintf("area %s has %d distinct IO sectors, cap is %d", area, n, codes.Len()),
				})
			}
		}

		violations = append(violations, checkCanonicalOrder(rows, codes)...)
	}

	return violations
}

// checkCanonicalOrder verifies the distinct IOSector sequence, read in
// row order, is a subsequence of the canonical list.
func checkCanonicalOrder(rows []BridgeRow, codes *SectorList) []Violation {
	var violations []Violation
	canonical := codes.Codes()

	pos := 0
	seen := make(map[string]bool)
	for _, r := range rows {
		if seen[r.IOSector] {
			continue
		}
		seen[r.IOSector] = true

		scan := pos
		found := false
		for scan < len(canonical) {
			if canonical[scan] == r.IOSector {
				found = true
				scan++
				break
			}
			scan++
		}
		if found {
			pos = scan
		} else {
			violations = append(violations, Violation{
				Rule:   "canonical ordering",
				Detail: fmt.Sprintf("sector %s out of canonical sequence", r.IOSector),
			})
		}
	}
	return violations
}

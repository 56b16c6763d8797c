// Package pairing implements the instructor pairing rule shared by the
// Paired-Consecutive Constructor and the scoring engine (which needs to know
// which instructors are "paired" in order to price bi-directional jury
// coverage regardless of which strategy produced the candidate Assignment
// set). Pairing is a pure function of the roster and each instructor's
// responsible-project count — never of the Assignment set itself.
package pairing

import "github.com/noah-isme/defense-scheduler-core/internal/domain"

// Pair links two instructors who should serve on each other's jury.
type Pair struct {
	Upper int // higher responsible-count instructor id
	Lower int // paired partner id
}

// SortedByResponsibility returns the roster ordered descending by
// responsible-project count, stable on id for ties.
func SortedByResponsibility(idx domain.Index) []domain.Instructor {
	counts := domain.ResponsibleCounts(idx.Bundle.Projects)
	ordered := append([]domain.Instructor(nil), idx.InstructorsSorted...)
	stableSortDescByCount(ordered, counts)
	return ordered
}

// Compute sorts instructors by descending responsible-project count (stable
// on id for ties), splits into upper/lower halves (the extra instructor on
// an odd roster goes to the lower half), and pairs each upper-half
// instructor with its mirror in the lower half: upper[i] pairs with the
// i-th *lightest* member of the lower half (lower[len(lower)-1-i]), so the
// most-loaded instructor in the upper half is paired with the
// least-loaded instructor overall. Mirroring from both ends this way (not
// a front-aligned upper[i]-lower[i] walk) is what keeps each pair's
// combined load balanced and is the only split consistent with spec §8's
// worked parity-split example: counts [4,3,2,2,1] pair rank0 with rank4 and
// rank1 with rank3, leaving rank2 — the lower half's own busiest member —
// unpaired rather than rank4. Leftover instructors (when the halves are
// uneven) are the first members of the lower half, i.e. the middle of the
// full sorted roster, and are returned separately.
func Compute(idx domain.Index) (pairs []Pair, unpaired []int) {
	ordered := SortedByResponsibility(idx)

	n := len(ordered)
	upperLen := n / 2
	upper := ordered[:upperLen]
	lower := ordered[upperLen:]

	pairCount := upperLen
	if len(lower) < pairCount {
		pairCount = len(lower)
	}
	pairs = make([]Pair, 0, pairCount)
	for i := 0; i < pairCount; i++ {
		pairs = append(pairs, Pair{Upper: upper[i].ID, Lower: lower[len(lower)-1-i].ID})
	}
	for i := pairCount; i < len(upper); i++ {
		unpaired = append(unpaired, upper[i].ID)
	}
	for i := 0; i < len(lower)-pairCount; i++ {
		unpaired = append(unpaired, lower[i].ID)
	}
	return pairs, unpaired
}

// stableSortDescByCount sorts by descending count, breaking ties by
// ascending id.
func stableSortDescByCount(instructors []domain.Instructor, counts map[int]int) {
	for i := 1; i < len(instructors); i++ {
		for j := i; j > 0; j-- {
			a, b := instructors[j-1], instructors[j]
			if less(counts[b.ID], b.ID, counts[a.ID], a.ID) {
				instructors[j-1], instructors[j] = instructors[j], instructors[j-1]
				continue
			}
			break
		}
	}
}

// less reports whether (countA, idA) should sort before (countB, idB) under
// "descending count, ascending id" ordering.
func less(countA, idA, countB, idB int) bool {
	if countA != countB {
		return countA > countB
	}
	return idA < idB
}

// PartnerOf returns the id of the instructor paired with id, and whether a
// pairing exists.
func PartnerOf(pairs []Pair, id int) (partner int, ok bool) {
	for _, p := range pairs {
		if p.Upper == id {
			return p.Lower, true
		}
		if p.Lower == id {
			return p.Upper, true
		}
	}
	return 0, false
}

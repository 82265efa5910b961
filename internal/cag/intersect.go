package cag

import (
	"math/big"
	"sort"

	"vraster/internal/numeric"
)

// candidatePairs reports every pair of segment indices whose bounding
// boxes overlap, exactly once each, via a sweep over the sorted minimum-X
// coordinates with an active-interval list. A recursive axis-aligned
// partition would give the same exactly-once guarantee; the sweep is the
// simpler of the two standard implementations.
func candidatePairs(segs []numeric.IntSegment) [][2]int {
	type box struct {
		idx        int
		minX, maxX int64
		minY, maxY int64
	}
	boxes := make([]box, len(segs))
	for i, s := range segs {
		minX, maxX := s.A.X, s.B.X
		if minX > maxX {
			minX, maxX = maxX, minX
		}
		minY, maxY := s.A.Y, s.B.Y
		if minY > maxY {
			minY, maxY = maxY, minY
		}
		boxes[i] = box{idx: i, minX: minX, maxX: maxX, minY: minY, maxY: maxY}
	}
	sort.Slice(boxes, func(i, j int) bool { return boxes[i].minX < boxes[j].minX })

	var pairs [][2]int
	active := []box{}
	for _, b := range boxes {
		kept := active[:0]
		for _, a := range active {
			if a.maxX >= b.minX {
				kept = append(kept, a)
			}
		}
		active = kept
		for _, a := range active {
			if a.minY <= b.maxY && b.minY <= a.maxY {
				i, j := a.idx, b.idx
				if i > j {
					i, j = j, i
				}
				pairs = append(pairs, [2]int{i, j})
			}
		}
		active = append(active, b)
	}
	return pairs
}

// intersectAll computes every pairwise segment-segment intersection
// (via candidatePairs' bounds filter, then exact rational
// numeric.IntersectSegments per candidate) and returns, for each input
// segment, the ordered list of split points (its own endpoints always
// included) at which that segment must be cut so the resulting pieces meet only at
// shared endpoints.
func intersectAll(segs []numeric.IntSegment) [][]numeric.Rat2 {
	splits := make([]map[string]numeric.Rat2, len(segs))
	for i := range splits {
		splits[i] = map[string]numeric.Rat2{}
	}
	addSplit := func(segIdx int, p numeric.Rat2) {
		splits[segIdx][ratKey(p)] = p
	}
	for i := range segs {
		addSplit(i, segs[i].A.ToRat2())
		addSplit(i, segs[i].B.ToRat2())
	}

	for _, pr := range candidatePairs(segs) {
		s0, s1 := segs[pr[0]], segs[pr[1]]
		seg0 := numeric.Segment{A: s0.A.ToRat2(), B: s0.B.ToRat2()}
		seg1 := numeric.Segment{A: s1.A.ToRat2(), B: s1.B.ToRat2()}
		ints, kind := numeric.IntersectSegments(seg0, seg1)
		if kind == numeric.NoIntersection {
			continue
		}
		for _, in := range ints {
			addSplit(pr[0], in.Point)
			addSplit(pr[1], in.Point)
		}
	}

	out := make([][]numeric.Rat2, len(segs))
	for i, m := range splits {
		a := segs[i].A.ToRat2()
		d := segs[i].B.ToRat2().Sub(a)
		type splitPoint struct {
			p numeric.Rat2
			t *big.Rat // exact projection onto the segment direction
		}
		pts := make([]splitPoint, 0, len(m))
		for _, p := range m {
			pts = append(pts, splitPoint{p: p, t: numeric.Dot(p.Sub(a), d)})
		}
		// Ordering stays exact: the unnormalized rational dot product is
		// monotone along the segment, so no float rounding can misorder
		// near-coincident intersection points (ties are impossible, since
		// coincident points already deduped via ratKey).
		sort.Slice(pts, func(x, y int) bool {
			return pts[x].t.Cmp(pts[y].t) < 0
		})
		ordered := make([]numeric.Rat2, len(pts))
		for j, sp := range pts {
			ordered[j] = sp.p
		}
		out[i] = ordered
	}
	return out
}

// ratKey renders an exact rational point as a canonical string so it can
// dedupe in a map without relying on *big.Rat pointer identity.
func ratKey(p numeric.Rat2) string {
	return p.X.RatString() + "," + p.Y.RatString()
}

package charset

import "testing"

func TestIntervalSetUnionCommutative(t *testing.T) {
	a := Of(Interval{Lo: 0, Hi: 5}, Interval{Lo: 10, Hi: 15})
	b := Of(Interval{Lo: 3, Hi: 12})

	ab := a.Union(b)
	ba := b.Union(a)

	if !ab.Equal(ba) {
		t.Fatalf("union not commutative: %v vs %v", ab.Ranges(), ba.Ranges())
	}
	want := Of(Interval{Lo: 0, Hi: 15})
	if !ab.Equal(want) {
		t.Fatalf("got %v, want %v", ab.Ranges(), want.Ranges())
	}
}

func TestIntervalSetDistributive(t *testing.T) {
	a := Of(Interval{Lo: 0, Hi: 10})
	b := Of(Interval{Lo: 5, Hi: 15})
	c := Of(Interval{Lo: 8, Hi: 20})

	lhs := a.Intersect(b.Union(c))
	rhs := a.Intersect(b).Union(a.Intersect(c))
	if !lhs.Equal(rhs) {
		t.Fatalf("distributive law failed: %v vs %v", lhs.Ranges(), rhs.Ranges())
	}
}

func TestIntervalSetComplementInvolution(t *testing.T) {
	a := Of(Interval{Lo: 2, Hi: 5}, Interval{Lo: 9, Hi: 12})
	bound := UChar(20)
	cc := a.Complement(bound).Complement(bound)
	if !cc.Equal(a) {
		t.Fatalf("complement is not its own inverse: %v vs %v", cc.Ranges(), a.Ranges())
	}
}

func TestPartitionDisjointAndCovers(t *testing.T) {
	a := Of(Interval{Lo: 0, Hi: 10})
	b := Of(Interval{Lo: 5, Hi: 15})

	both, aOnly, bOnly := Partition(a, b)

	if !both.Intersect(aOnly).IsEmpty() || !both.Intersect(bOnly).IsEmpty() || !aOnly.Intersect(bOnly).IsEmpty() {
		t.Fatalf("partition pieces are not disjoint")
	}
	union := both.Union(aOnly).Union(bOnly)
	want := a.Union(b)
	if !union.Equal(want) {
		t.Fatalf("partition pieces don't cover a∪b: got %v want %v", union.Ranges(), want.Ranges())
	}
}

func TestIntervalSetCanonicalInvariant(t *testing.T) {
	s := Of(Interval{Lo: 5, Hi: 10}, Interval{Lo: 0, Hi: 5}, Interval{Lo: 10, Hi: 12}, Interval{Lo: 20, Hi: 20})
	ranges := s.Ranges()
	for i, r := range ranges {
		if r.Empty() {
			t.Fatalf("empty interval stored at %d: %v", i, r)
		}
		if i > 0 && ranges[i-1].Hi >= r.Lo {
			t.Fatalf("ranges not coalesced/sorted: %v then %v", ranges[i-1], r)
		}
	}
	if !s.Contains(0) || !s.Contains(11) || s.Contains(12) {
		t.Fatalf("membership wrong: %v", ranges)
	}
}

func TestIntervalSetDifference(t *testing.T) {
	a := Of(Interval{Lo: 0, Hi: 20})
	b := Of(Interval{Lo: 5, Hi: 10})
	got := a.Difference(b)
	want := Of(Interval{Lo: 0, Hi: 5}, Interval{Lo: 10, Hi: 20})
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got.Ranges(), want.Ranges())
	}
}

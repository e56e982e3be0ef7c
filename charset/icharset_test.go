package charset

import "testing"

func disjoint(members []IChar) bool {
	for i := range members {
		for j := i + 1; j < len(members); j++ {
			if !members[i].Set.Intersect(members[j].Set).IsEmpty() {
				return false
			}
		}
	}
	return true
}

func TestICharSetRefineCoversInput(t *testing.T) {
	s := NewICharSet()
	digits := NewIChar(Of(Interval{Lo: '0', Hi: '9' + 1}), false, true)
	s.Add(digits)

	word := NewIChar(Of(Interval{Lo: '0', Hi: '9' + 1}, Interval{Lo: 'a', Hi: 'z' + 1}), false, true)
	s.Add(word)

	if !disjoint(s.Members()) {
		t.Fatalf("members not disjoint: %+v", s.Members())
	}

	atoms := s.Refine(word)
	var union IntervalSet
	for _, a := range atoms {
		union = union.Union(a.Set)
	}
	if !union.Equal(word.Set) {
		t.Fatalf("refine(word) doesn't cover word: got %v want %v", union.Ranges(), word.Set.Ranges())
	}
}

func TestICharSetAddIsIdempotentOnDisjointness(t *testing.T) {
	s := NewICharSet()
	s.Add(NewIChar(Of(Interval{Lo: 0, Hi: 10}), false, false))
	s.Add(NewIChar(Of(Interval{Lo: 5, Hi: 15}), false, false))
	s.Add(NewIChar(Of(Interval{Lo: 3, Hi: 8}), false, false))

	if !disjoint(s.Members()) {
		t.Fatalf("members not pairwise disjoint after repeated Add: %+v", s.Members())
	}
}

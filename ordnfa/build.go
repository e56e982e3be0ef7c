package ordnfa

import (
	"strconv"
	"strings"

	"github.com/coregx/redoscope/enfa"
	"github.com/coregx/redoscope/internal/timeout"
)

// Build eliminates ε-NFA's Eps/Assert transitions via closure and
// discovers the reachable Consume/Match positions, producing a densely
// numbered OrderedNFA. maxNFASize caps |Q|; exceeding it returns
// *SizeError (spec.md §4.3), which the Hybrid policy treats as a signal
// to fall back to the fuzz checker.
func Build(n *enfa.ENFA, maxNFASize int, t timeout.Timeout) (*OrderedNFA, error) {
	alphabet := deriveAlphabet(n)
	matchID := n.Accept()

	cache := make(map[enfa.StateID][]enfa.StateID)
	closureOf := func(start enfa.StateID) ([]enfa.StateID, error) {
		return closure(n, start, cache, t)
	}

	initsRaw, err := closureOf(n.Start())
	if err != nil {
		return nil, err
	}

	discovered := make(map[enfa.StateID]bool)
	var order []enfa.StateID
	var queue []enfa.StateID
	enqueue := func(id enfa.StateID) {
		if !discovered[id] {
			discovered[id] = true
			order = append(order, id)
			queue = append(queue, id)
		}
	}
	for _, id := range initsRaw {
		enqueue(id)
	}

	targetClosure := make(map[enfa.StateID][]enfa.StateID)
	for len(queue) > 0 {
		if err := t.Check("ordnfa.build"); err != nil {
			return nil, err
		}
		id := queue[0]
		queue = queue[1:]
		if id == matchID {
			continue
		}
		s := n.State(id)
		_, target := s.Consume()
		tc, err := closureOf(target)
		if err != nil {
			return nil, err
		}
		targetClosure[id] = tc
		for _, nx := range tc {
			enqueue(nx)
		}
		if len(order) > maxNFASize {
			return nil, &SizeError{Limit: maxNFASize, Got: len(order)}
		}
	}

	denseOf := make(map[enfa.StateID]StateID, len(order))
	for i, id := range order {
		denseOf[id] = StateID(i)
	}

	alphabetIndex := make(map[string]int, len(alphabet))
	for i, a := range alphabet {
		alphabetIndex[atomKey(a)] = i
	}

	states := make([]state, len(order))
	for i, id := range order {
		if id == matchID {
			states[i] = state{accept: true}
			continue
		}
		s := n.State(id)
		atoms, _ := s.Consume()
		mask := make([]bool, len(alphabet))
		for _, a := range atoms {
			if idx, ok := alphabetIndex[atomKey(a)]; ok {
				mask[idx] = true
			}
		}
		tc := targetClosure[id]
		target := make([]StateID, len(tc))
		for j, t := range tc {
			target[j] = denseOf[t]
		}
		states[i] = state{symbolMask: mask, target: target}
	}

	inits := make([]StateID, len(initsRaw))
	for i, id := range initsRaw {
		inits[i] = denseOf[id]
	}

	return &OrderedNFA{alphabet: alphabet, states: states, inits: inits}, nil
}

// closure computes the priority-ordered, cycle-safe ε-closure of start:
// an iterative pre-order DFS over Eps (multi-target, priority order) and
// Assert (single target, always assumed satisfiable — this structural
// analysis does not evaluate assertions against real input) transitions,
// terminating at Consume or Match states. Explicit work stack per spec.md
// §9's recursion-depth-hazard note; memoized per start id within one Build
// call since the same target is closed over repeatedly.
func closure(n *enfa.ENFA, start enfa.StateID, cache map[enfa.StateID][]enfa.StateID, t timeout.Timeout) ([]enfa.StateID, error) {
	if cached, ok := cache[start]; ok {
		return cached, nil
	}

	visited := make(map[enfa.StateID]bool)
	var order []enfa.StateID

	type frame struct {
		children []enfa.StateID
		idx      int
	}
	visit := func(id enfa.StateID) (terminal bool, children []enfa.StateID) {
		s := n.State(id)
		switch s.Kind() {
		case enfa.TransEps:
			return false, s.EpsTargets()
		case enfa.TransAssert:
			_, target := s.Assert()
			return false, []enfa.StateID{target}
		default: // TransConsume, TransMatch
			return true, nil
		}
	}

	visited[start] = true
	var stack []frame
	if term, children := visit(start); term {
		order = append(order, start)
	} else {
		stack = append(stack, frame{children: children})
	}

	for len(stack) > 0 {
		if err := t.Check("ordnfa.closure"); err != nil {
			return nil, err
		}
		top := &stack[len(stack)-1]
		if top.idx >= len(top.children) {
			stack = stack[:len(stack)-1]
			continue
		}
		nxt := top.children[top.idx]
		top.idx++
		if visited[nxt] {
			continue
		}
		visited[nxt] = true
		if term, children := visit(nxt); term {
			order = append(order, nxt)
		} else {
			stack = append(stack, frame{children: children})
		}
	}

	cache[start] = order
	return order, nil
}

// deriveAlphabet collects the distinct atoms actually referenced by the
// ε-NFA's Consume states, in ascending-state-id discovery order, giving a
// stable, deterministic symbol indexing.
func deriveAlphabet(n *enfa.ENFA) []enfa.CharAtom {
	var alphabet []enfa.CharAtom
	seen := make(map[string]bool)
	for id := enfa.StateID(0); int(id) < n.States(); id++ {
		s := n.State(id)
		if s.Kind() != enfa.TransConsume {
			continue
		}
		atoms, _ := s.Consume()
		for _, a := range atoms {
			k := atomKey(a)
			if !seen[k] {
				seen[k] = true
				alphabet = append(alphabet, a)
			}
		}
	}
	return alphabet
}

// atomKey returns a comparison key for deduplicating atoms by their
// underlying range set, ignoring the line-terminator/word flags — two
// atoms covering the same code points are the same alphabet symbol
// regardless of which classification produced them.
func atomKey(a enfa.CharAtom) string {
	var b strings.Builder
	for _, r := range a.Set.Ranges() {
		b.WriteString(strconv.Itoa(int(r.Lo)))
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(int(r.Hi)))
		b.WriteByte(',')
	}
	return b.String()
}

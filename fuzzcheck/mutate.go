package fuzzcheck

// mutate picks one of the six named mutation strategies uniformly at
// random and applies it to f.
func mutate(ctx *Context, f FString, rng RandSource) FString {
	switch rng.Intn(6) {
	case 0:
		return mutateRepeat(f, rng)
	case 1:
		return mutateInsert(ctx, f, rng)
	case 2:
		return mutateInsertPart(ctx, f, rng)
	case 3:
		return mutateUpdate(ctx, f, rng)
	case 4:
		return mutateCopy(f, rng)
	default:
		return mutateDelete(f, rng)
	}
}

// mutateRepeat nudges an existing Repeat element's multiplier, either
// additively or by doubling. A no-op if f has no Repeat element to nudge.
func mutateRepeat(f FString, rng RandSource) FString {
	var candidates []int
	for i, e := range f.Elements {
		if e.Kind == Repeat {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return f
	}
	pos := candidates[rng.Intn(len(candidates))]
	g := f.clone()
	e := g.Elements[pos]
	if rng.Intn(2) == 0 {
		e.M += rng.Between(-10, 10)
	} else {
		e.M *= 2
	}
	if e.M < 0 {
		e.M = 0
	}
	g.Elements[pos] = e
	return g
}

func randomWrap(ctx *Context, rng RandSource) Element {
	return Element{Kind: Wrap, Char: ctx.Alphabet[rng.Intn(len(ctx.Alphabet))]}
}

func randomRepeat(size int, rng RandSource) Element {
	if size < 0 {
		size = 0
	}
	return Element{Kind: Repeat, M: rng.Between(1, 10), Size: rng.Between(0, size)}
}

// mutateInsert inserts a single fresh element (a character wrap, or
// occasionally a repeat over the preceding elements) at a random position.
func mutateInsert(ctx *Context, f FString, rng RandSource) FString {
	pos := rng.Between(0, f.Size())
	if f.Size() > 0 && rng.Intn(4) == 0 {
		return f.InsertAt(pos, randomRepeat(pos, rng))
	}
	return f.InsertAt(pos, randomWrap(ctx, rng))
}

// mutateInsertPart splices one of the pattern's literal runs in at a
// random position, optionally with a Repeat inserted just before it; that
// Repeat's Size (at most the part's length) counts the elements preceding
// the insertion point, not the part.
func mutateInsertPart(ctx *Context, f FString, rng RandSource) FString {
	if len(ctx.Parts) == 0 {
		return mutateInsert(ctx, f, rng)
	}
	part := ctx.Parts[rng.Intn(len(ctx.Parts))]
	g := f
	pos := rng.Between(0, f.Size())
	for i, r := range part {
		g = g.InsertAt(pos+i, Element{Kind: Wrap, Char: r})
	}
	if rng.Intn(2) == 0 {
		g = g.InsertAt(pos, randomRepeat(len(part), rng))
	}
	return g
}

// mutateUpdate replaces one element in place with a freshly chosen one of
// the same general shape.
func mutateUpdate(ctx *Context, f FString, rng RandSource) FString {
	if f.Size() == 0 {
		return mutateInsert(ctx, f, rng)
	}
	pos := rng.Intn(f.Size())
	if f.Elements[pos].Kind == Repeat {
		return f.ReplaceAt(pos, randomRepeat(pos, rng))
	}
	return f.ReplaceAt(pos, randomWrap(ctx, rng))
}

// mutateCopy duplicates a random slice of elements at another random
// position, the way a genuinely exponential pump often arises: by
// accident, two copies of the same sub-pattern landing adjacent.
func mutateCopy(f FString, rng RandSource) FString {
	if f.Size() == 0 {
		return f
	}
	start := rng.Intn(f.Size())
	length := rng.Between(1, f.Size()-start)
	dst := rng.Between(0, f.Size())
	g := f.clone()
	block := append([]Element(nil), g.Elements[start:start+length]...)
	out := make([]Element, 0, len(g.Elements)+length)
	out = append(out, g.Elements[:dst]...)
	out = append(out, block...)
	out = append(out, g.Elements[dst:]...)
	g.Elements = out
	return g
}

// mutateDelete removes a random contiguous slice, leaving at least one
// element behind.
func mutateDelete(f FString, rng RandSource) FString {
	if f.Size() < 2 {
		return f
	}
	start := rng.Intn(f.Size())
	maxLen := f.Size() - start
	if remain := f.Size() - 1; maxLen > remain {
		maxLen = remain
	}
	if maxLen < 1 {
		return f
	}
	length := rng.Between(1, maxLen)
	return f.Delete(start, length)
}

package runtime

// bitset is a fixed-width bit vector used for the per-instance active
// state spec.md §5 describes: active nodes, active input plugs, and
// active output plugs are each tracked as a bitset rather than a
// []bool, the same flat-word-array approach the source's dsInstance
// uses for its node/plug activity tables.
type bitset struct {
	words []uint64
}

func newBitset(n int) bitset {
	return bitset{words: make([]uint64, (n+63)/64)}
}

func (b *bitset) Set(i int)   { b.words[i/64] |= 1 << uint(i%64) }
func (b *bitset) Clear(i int) { b.words[i/64] &^= 1 << uint(i%64) }
func (b *bitset) Test(i int) bool {
	if i/64 >= len(b.words) {
		return false
	}
	return b.words[i/64]&(1<<uint(i%64)) != 0
}

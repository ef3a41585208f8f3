package assembly

import "golang.org/x/crypto/blake2b"

// Hash computes the assembly's validation hash over buf as if the
// header's own hash field were zero (spec.md §3 "Hash"). It uses
// BLAKE2b-256 truncated to 64 bits rather than FNV, keeping the two
// hash domains in this format — per-name FNV-1a/64 (internal/namehash)
// and whole-blob content hashing — on distinct primitives (see
// DESIGN.md and SPEC_FULL.md §7).
func Hash(buf []byte) uint64 {
	scratch := make([]byte, len(buf))
	copy(scratch, buf)
	for i := 0; i < 8; i++ {
		scratch[offHash+i] = 0
	}
	sum := blake2b.Sum256(scratch)
	return getU64(sum[:], 0)
}

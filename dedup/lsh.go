package dedup

import "hash/maphash"

// LSH banding parameters. 32 bands of 4 rows give a candidate-probability
// curve whose steep region brackets the default 0.85 threshold: pairs at
// 0.85 similarity become candidates with probability ~0.999 while pairs at
// 0.5 stay below ~0.9 and are filtered by the exact signature comparison.
const (
	lshBands       = 32
	lshRowsPerBand = 4
)

// bandKey identifies one band bucket.
type bandKey struct {
	band   int
	digest uint64
}

// lshIndex buckets signatures by band so that only items sharing a bucket
// are ever compared pairwise.
type lshIndex struct {
	seed    maphash.Seed
	buckets map[bandKey][]int
}

func newLSHIndex() *lshIndex {
	return &lshIndex{
		seed:    maphash.MakeSeed(),
		buckets: make(map[bandKey][]int),
	}
}

// add inserts the signature of item id into every band bucket it hashes to.
func (idx *lshIndex) add(id int, sig signature) {
	for band := 0; band < lshBands; band++ {
		idx.buckets[idx.key(band, sig)] = append(idx.buckets[idx.key(band, sig)], id)
	}
}

func (idx *lshIndex) key(band int, sig signature) bandKey {
	var h maphash.Hash
	h.SetSeed(idx.seed)
	start := band * lshRowsPerBand
	for _, v := range sig[start : start+lshRowsPerBand] {
		var buf [8]byte
		for i := 0; i < 8; i++ {
			buf[i] = byte(v >> (8 * i))
		}
		h.Write(buf[:])
	}
	return bandKey{band: band, digest: h.Sum64()}
}

// candidatePairs yields each id pair sharing at least one bucket, exactly
// once, with i < j.
func (idx *lshIndex) candidatePairs() [][2]int {
	seen := make(map[[2]int]struct{})
	var pairs [][2]int

	for _, ids := range idx.buckets {
		if len(ids) < 2 {
			continue
		}
		for a := 0; a < len(ids); a++ {
			for b := a + 1; b < len(ids); b++ {
				i, j := ids[a], ids[b]
				if i > j {
					i, j = j, i
				}
				pair := [2]int{i, j}
				if _, dup := seen[pair]; dup {
					continue
				}
				seen[pair] = struct{}{}
				pairs = append(pairs, pair)
			}
		}
	}
	return pairs
}

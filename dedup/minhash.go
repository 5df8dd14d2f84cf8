// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package dedup

import "math"

// SignatureLength is the number of independent hash positions in a MinHash
// signature. 128 positions keep the Jaccard estimate within a few percent
// of the true value.
const SignatureLength = 128

// signature is a MinHash sketch of a shingle set. Two signatures estimate
// the Jaccard similarity of their underlying sets by the fraction of
// positions on which they agree.
type signature [SignatureLength]uint64

// hashSeeds holds one mixing seed per signature position, derived once from
// a fixed base so signatures are stable across runs.
var hashSeeds = func() [SignatureLength]uint64 {
	var seeds [SignatureLength]uint64
	state := uint64(0x9e3779b97f4a7c15)
	for i := range seeds {
		state += 0x9e3779b97f4a7c15
		seeds[i] = mix64(state)
	}
	return seeds
}()

// mix64 is the splitmix64 finalizer. It turns a weak 64-bit input into a
// well-distributed one.
func mix64(v uint64) uint64 {
	v ^= v >> 30
	v *= 0xbf58476d1ce4e5b9
	v ^= v >> 27
	v *= 0x94d049bb133111eb
	v ^= v >> 31
	return v
}

// computeSignature sketches a shingle set. Reports ErrEmptySignature when
// the set is empty, in which case the item cannot be compared and is
// treated as unique by callers.
func computeSignature(set map[uint64]struct{}) (signature, error) {
	var sig signature
	if len(set) == 0 {
		return sig, ErrEmptySignature
	}

	for i := range sig {
		sig[i] = math.MaxUint64
	}
	for shingle := range set {
		for i, seed := range hashSeeds {
			if h := mix64(shingle ^ seed); h < sig[i] {
				sig[i] = h
			}
		}
	}
	return sig, nil
}

// estimateSimilarity returns the fraction of positions on which two
// signatures agree, an unbiased estimate of Jaccard similarity.
func estimateSimilarity(a, b signature) float64 {
	matches := 0
	for i := range a {
		if a[i] == b[i] {
			matches++
		}
	}
	return float64(matches) / float64(SignatureLength)
}

package calculator

// searcher finds k entries of a sorted slice that sum to a target. It walks
// index ranges of one array instead of copying sub-slices, and returns the
// first match in lexicographic index order.
type searcher struct {
	units  []int64
	prefix []int64 // prefix[i] = units[0] + ... + units[i-1]

	budget    int
	limited   bool
	exhausted bool

	failed map[searchKey]struct{}
	picked []int
}

type searchKey struct {
	start  int
	k      int
	target int64
}

func newSearcher[K comparable](working []entry[K], budget int) *searcher {
	units := make([]int64, len(working))
	prefix := make([]int64, len(working)+1)
	for i, e := range working {
		units[i] = e.units
		prefix[i+1] = prefix[i] + e.units
	}
	return &searcher{
		units:   units,
		prefix:  prefix,
		budget:  budget,
		limited: budget > 0,
		failed:  make(map[searchKey]struct{}),
	}
}

// rangeSum returns units[from] + ... + units[to-1].
func (s *searcher) rangeSum(from, to int) int64 {
	return s.prefix[to] - s.prefix[from]
}

// find reports whether k entries in units[start:] sum to target. On success the
// chosen indices, ascending, are appended to s.picked.
//
// Pruning only discards ranges that cannot contain a match: the k smallest
// entries of a range bound its k-sums from below, the k largest from above.
func (s *searcher) find(start, k int, target int64) bool {
	if s.limited {
		if s.budget <= 0 {
			s.exhausted = true
			return false
		}
		s.budget--
	}

	n := len(s.units)
	if k <= 0 || n-start < k {
		return false
	}
	if target < s.rangeSum(start, start+k) || target > s.rangeSum(n-k, n) {
		return false
	}

	switch k {
	case 1:
		for i := start; i < n && s.units[i] <= target; i++ {
			if s.units[i] == target {
				s.picked = append(s.picked, i)
				return true
			}
		}
		return false

	case 2:
		// Two pointers; only valid because units is sorted.
		low, high := start, n-1
		for low < high {
			sum := s.units[low] + s.units[high]
			switch {
			case sum < target:
				low++
			case sum > target:
				high--
			default:
				s.picked = append(s.picked, low, high)
				return true
			}
		}
		return false
	}

	key := searchKey{start: start, k: k, target: target}
	if _, seen := s.failed[key]; seen {
		return false
	}

	for first := start; first < n-(k-1); first++ {
		rest := target - s.units[first]
		// Later firsts only lower rest and raise the smallest reachable sum.
		if rest < s.rangeSum(first+1, first+k) {
			break
		}
		s.picked = append(s.picked, first)
		if s.find(first+1, k-1, rest) {
			return true
		}
		s.picked = s.picked[:len(s.picked)-1]
		if s.exhausted {
			return false
		}
	}

	s.failed[key] = struct{}{}
	return false
}

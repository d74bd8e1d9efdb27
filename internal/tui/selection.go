package tui

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ErrInvalidSelection is returned when the input selects nothing usable.
var ErrInvalidSelection = errors.New("invalid selection")

// SelectIndices parses whitespace separated 1-based indices and inclusive
// ranges such as "1-3 5 7" against a list of count items. Duplicates are
// dropped, keeping the first occurrence. Tokens that are not numbers or
// ranges are ignored, as are indices outside 1..count, and ranges are
// clamped before they are expanded. If nothing remains the result is
// ErrInvalidSelection.
func SelectIndices(input string, count int) ([]int, error) {
	var indices []int
	seen := make(map[int]struct{})

	add := func(n int) {
		if n < 1 || n > count {
			return
		}
		if _, ok := seen[n]; ok {
			return
		}
		seen[n] = struct{}{}
		indices = append(indices, n)
	}

	for _, token := range strings.Fields(input) {
		if start, end, ok := strings.Cut(token, "-"); ok {
			lo, errLo := strconv.Atoi(start)
			hi, errHi := strconv.Atoi(end)
			if errLo != nil || errHi != nil || lo < 0 {
				continue
			}
			lo, hi = max(lo, 1), min(hi, count)
			for n := lo; n <= hi; n++ {
				add(n)
			}
			continue
		}

		n, err := strconv.Atoi(token)
		if err != nil {
			continue
		}
		add(n)
	}

	if len(indices) == 0 {
		return nil, fmt.Errorf("%w: nothing between 1 and %d", ErrInvalidSelection, count)
	}
	return indices, nil
}

// Pick returns the items at the given 1-based indices in list order.
// Indices out of range are ignored.
func Pick[T any](items []T, indices []int) []T {
	picked := make([]T, 0, len(indices))
	for i, item := range items {
		if slices.Contains(indices, i+1) {
			picked = append(picked, item)
		}
	}
	return picked
}

// SelectOne parses a single 1-based index into a list of count items.
func SelectOne(input string, count int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || n < 1 || n > count {
		return 0, ErrInvalidSelection
	}
	return n, nil
}

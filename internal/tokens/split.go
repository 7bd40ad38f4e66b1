// Package tokens implements exact integer redistribution of token counts
// across the messages an entry expanded into.
package tokens

import "sort"

// Split divides total across len(weights) shares in proportion to the
// weights. Each share gets the floor of its proportional value; the leftover
// units go one at a time to the shares with the largest fractional remainder,
// earliest share first on ties. The shares always sum to total and are never
// negative. A zero total weight falls back to an even split using the same
// remainder rule. All arithmetic is integral; no floating point is involved.
func Split(total int, weights []int) []int {
	n := len(weights)
	if n == 0 {
		return nil
	}
	if total < 0 {
		total = 0
	}
	if n == 1 {
		return []int{total}
	}

	totalWeight := 0
	for _, w := range weights {
		if w > 0 {
			totalWeight += w
		}
	}
	if totalWeight == 0 {
		even := make([]int, n)
		for i := range even {
			even[i] = 1
		}
		weights = even
		totalWeight = n
	}

	shares := make([]int, n)
	remainders := make([]int64, n)
	assigned := 0
	for i, w := range weights {
		if w < 0 {
			w = 0
		}
		exact := int64(total) * int64(w)
		shares[i] = int(exact / int64(totalWeight))
		remainders[i] = exact % int64(totalWeight)
		assigned += shares[i]
	}

	leftover := total - assigned
	if leftover == 0 {
		return shares
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return remainders[order[a]] > remainders[order[b]]
	})
	for k := 0; k < leftover; k++ {
		shares[order[k]]++
	}
	return shares
}

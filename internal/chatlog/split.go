package chatlog

import "strings"

// Split cuts text at every boundary of g, leftmost first and non-overlapping.
// Text before the first boundary is discarded. Each chunk runs up to the next
// boundary or the end of text, line terminators included.
func Split(text string, g Grammar) []Pair {
	locs := g.Boundary().FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}

	pairs := make([]Pair, 0, len(locs))
	line := 1
	prev := 0
	for i, loc := range locs {
		line += strings.Count(text[prev:loc[0]], "\n")
		prev = loc[0]

		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		pairs = append(pairs, Pair{
			Stamp: text[loc[0]:loc[1]],
			Chunk: text[loc[1]:end],
			Line:  line,
		})
	}
	return pairs
}

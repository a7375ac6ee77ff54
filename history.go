package hnsearch

import "strings"

// MaxHistory is the number of previous searches offered as shortcuts.
const MaxHistory = 5

// History derives the quick-access shortcuts from a query log: adjacent
// repeats of a term collapse into one, empty terms are dropped, and the last
// MaxHistory terms before the most recent one are returned. It holds no state
// and is recomputed from the log on every render.
func History(log []Query) []string {
	terms := make([]string, 0, len(log))
	for _, q := range log {
		term := strings.TrimSpace(q.Term)
		if len(terms) > 0 && terms[len(terms)-1] == term {
			continue
		}
		terms = append(terms, term)
	}

	nonEmpty := terms[:0]
	for _, term := range terms {
		if term != "" {
			nonEmpty = append(nonEmpty, term)
		}
	}

	if len(nonEmpty) < 2 {
		return []string{}
	}
	if len(nonEmpty) > MaxHistory+1 {
		nonEmpty = nonEmpty[len(nonEmpty)-(MaxHistory+1):]
	}
	return nonEmpty[:len(nonEmpty)-1]
}

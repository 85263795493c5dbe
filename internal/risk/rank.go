package risk

import "sort"

// Ranked pairs a client with its score.
type Ranked struct {
	Client Client `json:"client"`
	Result Result `json:"risk"`
}

// RankAll scores every client with the standard table and orders them by
// descending score.
func RankAll(clients []Client) []Ranked {
	return defaultScorer.RankAll(clients)
}

// TopAtRisk returns the n highest-risk clients.
func TopAtRisk(clients []Client, n int) []Ranked {
	return defaultScorer.TopAtRisk(clients, n)
}

// RankAll scores every client and orders them by descending score. Clients
// with equal scores keep their input order.
func (s *Scorer) RankAll(clients []Client) []Ranked {
	ranked := make([]Ranked, len(clients))
	for i, c := range clients {
		ranked[i] = Ranked{Client: c, Result: s.Score(c.Signals)}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Result.Score > ranked[j].Result.Score
	})
	return ranked
}

// TopAtRisk returns the first n clients of RankAll. A non-positive n or one
// larger than the client list returns every client.
func (s *Scorer) TopAtRisk(clients []Client, n int) []Ranked {
	ranked := s.RankAll(clients)
	if n <= 0 || n >= len(ranked) {
		return ranked
	}
	return ranked[:n]
}

package risk

import "fmt"

// MaxScore is the ceiling applied after all bands are summed.
const MaxScore = 100

// NoRiskReason is reported when no band produced a reason.
const NoRiskReason = "On track — no risk flags"

// Result is the outcome of scoring one client.
type Result struct {
	Score   int      `json:"score"`
	Level   Level    `json:"level"`
	Reasons []string `json:"reasons"`
}

// Label returns the compact badge text, e.g. "88 HIGH" or "42 MED".
func (r Result) Label() string {
	return fmt.Sprintf("%d %s", r.Score, r.Level.Short())
}

// RiskScorer computes a Result from Signals.
type RiskScorer interface {
	Score(signals Signals) Result
}

// tier is one threshold within a band. An empty reason adds points silently.
type tier struct {
	match  func(v int) bool
	points int
	reason string
}

// band scores one signal. Tiers are ordered highest first and at most one
// applies.
type band struct {
	name  string
	value func(Signals) int
	tiers []tier
}

func atMost(n int) func(int) bool  { return func(v int) bool { return v <= n } }
func atLeast(n int) func(int) bool { return func(v int) bool { return v >= n } }
func exactly(n int) func(int) bool { return func(v int) bool { return v == n } }

func boolValue(b bool) int {
	if b {
		return 1
	}
	return 0
}

var defaultBands = []band{
	{
		name:  "deadline",
		value: Signals.DaysUntilDeadline,
		tiers: []tier{
			{atMost(3), 45, "Deadline within 3 days"},
			{atMost(7), 32, "Deadline this week"},
			{atMost(14), 18, "Deadline within 2 weeks"},
			{atMost(30), 8, ""},
		},
	},
	{
		name:  "obligations",
		value: func(s Signals) int { return s.OpenObligationsCount },
		tiers: []tier{
			{atLeast(3), 20, "3+ open obligations"},
			{exactly(2), 12, "Multiple open obligations"},
			{exactly(1), 6, ""},
		},
	},
	{
		name:  "employees",
		value: func(s Signals) int { return s.EmployeeCount },
		tiers: []tier{
			{atLeast(20), 15, "Large payroll (20+ staff)"},
			{atLeast(10), 10, "Medium payroll (10+ staff)"},
			{atLeast(5), 5, ""},
		},
	},
	{
		name:  "reminders",
		value: func(s Signals) int { return boolValue(s.HasIgnoredRecentReminder) },
		tiers: []tier{
			{exactly(1), 12, "Not responding to reminders"},
		},
	},
	{
		name:  "late_history",
		value: func(s Signals) int { return s.LateLodgementHistoryCount },
		tiers: []tier{
			{atLeast(2), 8, "Previously late 2+ times"},
			{exactly(1), 4, ""},
		},
	},
}

// Scorer is the rule-based RiskScorer.
type Scorer struct {
	bands []band
}

// NewScorer creates a Scorer with the standard band table.
func NewScorer() *Scorer {
	return &Scorer{bands: defaultBands}
}

var defaultScorer = NewScorer()

// Score scores signals with the standard band table.
func Score(signals Signals) Result {
	return defaultScorer.Score(signals)
}

// Score evaluates every band, sums the points and caps the total at MaxScore.
// Reasons follow band order.
func (s *Scorer) Score(signals Signals) Result {
	score := 0
	reasons := make([]string, 0, len(s.bands))

	for _, b := range s.bands {
		points, reason := b.evaluate(signals)
		score += points
		if reason != "" {
			reasons = append(reasons, reason)
		}
	}

	if score > MaxScore {
		score = MaxScore
	}
	if len(reasons) == 0 {
		reasons = append(reasons, NoRiskReason)
	}

	return Result{
		Score:   score,
		Level:   LevelFromScore(score),
		Reasons: reasons,
	}
}

// Breakdown returns the points each band contributed, keyed by band name.
func (s *Scorer) Breakdown(signals Signals) map[string]int {
	out := make(map[string]int, len(s.bands))
	for _, b := range s.bands {
		points, _ := b.evaluate(signals)
		out[b.name] = points
	}
	return out
}

func (b band) evaluate(signals Signals) (int, string) {
	v := b.value(signals)
	for _, t := range b.tiers {
		if t.match(v) {
			return t.points, t.reason
		}
	}
	return 0, ""
}

var _ RiskScorer = (*Scorer)(nil)

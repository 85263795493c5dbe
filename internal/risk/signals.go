// Package risk scores how likely a client is to miss a compliance deadline.
//
// Scoring is a fixed, additive rule table over a handful of signals. It has
// no I/O and no error conditions: absent signals take their defaults.
package risk

// NoDeadline is the days-until-deadline value assumed when a client has no
// known upcoming deadline.
const NoDeadline = 999

// Signals are the per-client facts the score is computed from.
type Signals struct {
	// DaysUntilNextDeadline is nil or zero when unknown. Negative values
	// mean overdue.
	DaysUntilNextDeadline     *int `json:"daysUntilNextDeadline,omitempty"`
	OpenObligationsCount      int  `json:"openObligationsCount"`
	EmployeeCount             int  `json:"employeeCount"`
	HasIgnoredRecentReminder  bool `json:"hasIgnoredRecentReminder"`
	LateLodgementHistoryCount int  `json:"lateLodgementHistoryCount"`
}

// DaysUntilDeadline returns the days until the next deadline, NoDeadline if
// unknown. A zero count is treated as unknown so that all-zero signals score 0.
func (s Signals) DaysUntilDeadline() int {
	if s.DaysUntilNextDeadline == nil || *s.DaysUntilNextDeadline == 0 {
		return NoDeadline
	}
	return *s.DaysUntilNextDeadline
}

// Days returns a pointer to d, for building Signals literals.
func Days(d int) *int {
	return &d
}

// Client is a practice client together with its risk signals.
type Client struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Signals
}

// DisplayName returns the client name, falling back to the ID.
func (c Client) DisplayName() string {
	if c.Name == "" {
		return c.ID
	}
	return c.Name
}

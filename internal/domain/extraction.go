// backend/internal/domain/extraction.go
package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Outcome classifies the result of one strategy attempt. The orchestrator
// decides its fallbacks from these codes instead of inferring them from
// the absence of data.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeNoData  Outcome = "no_data"
	OutcomeBlocked Outcome = "blocked"
	OutcomeNetwork Outcome = "network_error"
	OutcomeParse   Outcome = "parse_error"
)

// Strategy names used in attempt records and logs.
const (
	StrategyAPI     = "api"
	StrategyHTML    = "html"
	StrategyGeneric = "generic"
)

// Attempt records the outcome of a single strategy for diagnostics.
// Attempts are logged server-side and never returned to callers.
type Attempt struct {
	Strategy string
	Outcome  Outcome
	Detail   string
}

func (a Attempt) String() string {
	if a.Detail == "" {
		return fmt.Sprintf("%s=%s", a.Strategy, a.Outcome)
	}
	return fmt.Sprintf("%s=%s (%s)", a.Strategy, a.Outcome, a.Detail)
}

// ErrUnsupportedURL is returned when the input URL matches no registered
// site. No network call has been made when this is returned.
var ErrUnsupportedURL = errors.New("url matches no supported site")

// ExtractionError is the terminal failure after every strategy for a
// detected site produced no usable title. The attempt trail is for
// server-side logs only; callers get the generic message.
type ExtractionError struct {
	Site     string
	Attempts []Attempt
}

func (e *ExtractionError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, a.String())
	}
	return fmt.Sprintf("all strategies failed for %s: %s", e.Site, strings.Join(parts, ", "))
}

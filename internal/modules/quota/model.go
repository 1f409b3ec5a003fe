// README: Monthly parse allowance per user; the counter resets lazily on the first use of a new month.
package quota

import "errors"

// ErrExhausted is returned when a user has no parses left for the current month.
var ErrExhausted = errors.New("monthly parse allowance exhausted")

// DefaultMonthly is the allowance granted when none is configured.
const DefaultMonthly = 300

// monthKey formats the month a counter belongs to.
const monthKey = "2006-01"

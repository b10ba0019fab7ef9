package translate

import "fmt"

// Report counts how often each rewrite rule fired during one translation.
// It is produced alongside the rewritten text and is read-only afterwards;
// the formatters in internal/output render it for the user.
type Report struct {
	DropTableGuards        int `json:"dropTableGuards"`
	BannerCommentsRemoved  int `json:"bannerCommentsRemoved"`
	BatchSeparators        int `json:"batchSeparators"`
	BracketsRemoved        int `json:"bracketsRemoved"`
	BracketsSkipped        int `json:"bracketsSkipped"`
	IdentityInsertRemoved  int `json:"identityInsertRemoved"`
	LockEscalationRemoved  int `json:"lockEscalationRemoved"`
	StorageClausesRemoved  int `json:"storageClausesRemoved"`
	CollateClausesRemoved  int `json:"collateClausesRemoved"`
	IdentityColumns        int `json:"identityColumns"`
	NumericTypesMapped     int `json:"numericTypesMapped"`
	MoneyTypesMapped       int `json:"moneyTypesMapped"`
	PrimaryKeysFolded      int `json:"primaryKeysFolded"`
	PrimaryKeysPreserved   int `json:"primaryKeysPreserved"`
	PrimaryKeysSynthesized int `json:"primaryKeysSynthesized"`

	// Notes carry structural information that is otherwise silently lost,
	// such as a discarded non-default IDENTITY seed.
	Notes []string `json:"notes,omitempty"`
}

// Rewrites returns the total number of rule applications.
func (r *Report) Rewrites() int {
	return r.DropTableGuards +
		r.BannerCommentsRemoved +
		r.BatchSeparators +
		r.BracketsRemoved +
		r.IdentityInsertRemoved +
		r.LockEscalationRemoved +
		r.StorageClausesRemoved +
		r.CollateClausesRemoved +
		r.IdentityColumns +
		r.NumericTypesMapped +
		r.MoneyTypesMapped +
		r.PrimaryKeysFolded +
		r.PrimaryKeysSynthesized
}

func (r *Report) addNote(format string, args ...any) {
	r.Notes = append(r.Notes, fmt.Sprintf(format, args...))
}

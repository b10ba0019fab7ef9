package output

import (
	"encoding/json"

	"sqlshift/internal/exec"
	"sqlshift/internal/translate"
)

type jsonFormatter struct{}

type reportPayload struct {
	Format  string            `json:"format"`
	Report  *translate.Report `json:"report"`
	Summary reportSummary     `json:"summary"`
}

type reportSummary struct {
	Rewrites int `json:"rewrites"`
	Notes    int `json:"notes"`
}

type outcomePayload struct {
	Format   string          `json:"format"`
	Outcomes []outcomeRecord `json:"outcomes"`
	Summary  outcomeSummary  `json:"summary"`
}

type outcomeRecord struct {
	Index      int    `json:"index"`
	Statement  string `json:"statement"`
	DurationMS int64  `json:"durationMs"`
	Error      string `json:"error,omitempty"`
}

type outcomeSummary struct {
	Statements int `json:"statements"`
	Succeeded  int `json:"succeeded"`
	Failed     int `json:"failed"`
}

func (jsonFormatter) FormatReport(r *translate.Report) (string, error) {
	payload := reportPayload{Format: string(FormatJSON), Report: r}
	if r != nil {
		payload.Summary = reportSummary{Rewrites: r.Rewrites(), Notes: len(r.Notes)}
	}
	return marshalJSON(payload)
}

func (jsonFormatter) FormatOutcomes(outcomes []exec.Outcome) (string, error) {
	succeeded, failed := exec.Summary(outcomes)
	payload := outcomePayload{
		Format: string(FormatJSON),
		Summary: outcomeSummary{
			Statements: len(outcomes),
			Succeeded:  succeeded,
			Failed:     failed,
		},
	}
	for _, o := range outcomes {
		rec := outcomeRecord{
			Index:      o.Index,
			Statement:  o.Statement,
			DurationMS: o.Duration.Milliseconds(),
		}
		if o.Err != nil {
			rec.Error = o.Err.Error()
		}
		payload.Outcomes = append(payload.Outcomes, rec)
	}
	return marshalJSON(payload)
}

func marshalJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data) + "\n", nil
}

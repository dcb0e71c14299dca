// Package dnc evaluates the Do-Not-Contact compliance policy: an
// expert may be contacted for a project only when the input is
// complete, the expert's company is not on the blocked-company list,
// and the expert's country is not sanctioned.
package dnc

import (
	"time"

	"github.com/google/uuid"
)

const (
	ReasonCompany = "dnc_company"
	ReasonCountry = "dnc_country"

	// ReasonEvaluationFailed is attached by callers when an
	// evaluation could not be completed at all (e.g. a remote
	// engine round trip failed); the verdict still fails closed.
	ReasonEvaluationFailed = "evaluation_failed"

	CheckCompanyName  = "company"
	CheckCountryName  = "country"
	CheckValidityName = "validity"
)

type Expert struct {
	ID               string `json:"id"`
	Name             string `json:"name,omitempty"`
	CurrentCompanyID string `json:"current_company_id"`
	CountryID        string `json:"country_id"`
}

type Project struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Title string `json:"title,omitempty"`
}

// Verdict is a reasoned, explainable outcome for one evaluation.
// Reasons is conjunctive: every applicable block reason is present,
// not just the first found. Checks maps each check name to whether it
// passed.
type Verdict struct {
	EvaluationID string          `json:"evaluation_id,omitempty"`
	CanContact   bool            `json:"can_contact"`
	Reasons      []string        `json:"dnc_reasons"`
	ExpertID     string          `json:"expert_id"`
	ProjectID    string          `json:"project_id"`
	ProjectType  string          `json:"project_type"`
	Checks       map[string]bool `json:"checks"`
	Timestamp    string          `json:"timestamp"`
}

// Evaluator holds the two immutable blocklists. State lives per
// evaluation, never on the evaluator, so concurrent use needs no
// locking.
type Evaluator struct {
	companies *Blocklist
	countries *Blocklist
	now       func() time.Time
}

func NewEvaluator(companies, countries *Blocklist) *Evaluator {
	return &Evaluator{
		companies: companies,
		countries: countries,
		now:       time.Now,
	}
}

// Validate reports whether every required field is present. Absence
// of a required field is itself disqualifying, not merely unknown.
func (e *Evaluator) Validate(ex Expert, p Project) bool {
	return ex.ID != "" &&
		ex.CurrentCompanyID != "" &&
		ex.CountryID != "" &&
		p.ID != "" &&
		p.Type != ""
}

// CheckCompany looks the expert's current company up in the blocked-
// company table by exact identifier match.
func (e *Evaluator) CheckCompany(ex Expert) (Entry, bool) {
	return e.companies.Lookup(ex.CurrentCompanyID)
}

// CheckCountry looks the expert's country up in the sanctioned-
// country table by exact identifier match.
func (e *Evaluator) CheckCountry(ex Expert) (Entry, bool) {
	return e.countries.Lookup(ex.CountryID)
}

// Evaluate runs validate -> company -> country -> aggregate. Invalid
// input short-circuits: no blocklist check runs and no block reason
// is attached, but the verdict still denies contact.
func (e *Evaluator) Evaluate(ex Expert, p Project) Verdict {
	v := Verdict{
		EvaluationID: uuid.NewString(),
		Reasons:      []string{},
		ExpertID:     ex.ID,
		ProjectID:    p.ID,
		ProjectType:  p.Type,
		Checks:       make(map[string]bool, 3),
		Timestamp:    e.now().UTC().Format(time.RFC3339),
	}

	valid := e.Validate(ex, p)
	v.Checks[CheckValidityName] = valid
	if !valid {
		v.Checks[CheckCompanyName] = false
		v.Checks[CheckCountryName] = false
		return v
	}

	if _, hit := e.CheckCompany(ex); hit {
		v.Checks[CheckCompanyName] = false
		v.Reasons = append(v.Reasons, ReasonCompany)
	} else {
		v.Checks[CheckCompanyName] = true
	}

	if _, hit := e.CheckCountry(ex); hit {
		v.Checks[CheckCountryName] = false
		v.Reasons = append(v.Reasons, ReasonCountry)
	} else {
		v.Checks[CheckCountryName] = true
	}

	v.CanContact = len(v.Reasons) == 0
	return v
}

// FailedVerdict builds the fail-closed verdict for an evaluation that
// could not run to completion.
func FailedVerdict(ex Expert, p Project, now time.Time) Verdict {
	return Verdict{
		EvaluationID: uuid.NewString(),
		CanContact:   false,
		Reasons:      []string{ReasonEvaluationFailed},
		ExpertID:     ex.ID,
		ProjectID:    p.ID,
		ProjectType:  p.Type,
		Checks:       map[string]bool{},
		Timestamp:    now.UTC().Format(time.RFC3339),
	}
}

package lead

import "time"

// Field names as exposed to the model and persisted in records.
const (
	FieldName     = "name"
	FieldCompany  = "company"
	FieldEmail    = "email"
	FieldUseCase  = "use_case"
	FieldBudget   = "budget"
	FieldTimeline = "timeline"
)

// Fields lists every profile field in record order.
var Fields = []string{FieldName, FieldCompany, FieldEmail, FieldUseCase, FieldBudget, FieldTimeline}

// Profile is the in-progress lead data of one conversation.
// It is owned by a single session and is not safe for concurrent use.
type Profile struct {
	Name     string `json:"name"`
	Company  string `json:"company"`
	Email    string `json:"email"`
	UseCase  string `json:"use_case"`
	Budget   string `json:"budget"`
	Timeline string `json:"timeline"`
}

// Patch carries a partial update. Nil means "not supplied".
type Patch struct {
	Name     *string `json:"name,omitempty"`
	Company  *string `json:"company,omitempty"`
	Email    *string `json:"email,omitempty"`
	UseCase  *string `json:"use_case,omitempty"`
	Budget   *string `json:"budget,omitempty"`
	Timeline *string `json:"timeline,omitempty"`
}

// NewProfile returns an empty profile.
func NewProfile() *Profile {
	return &Profile{}
}

// Update merges p field by field. Nil and empty values never overwrite;
// anything else is stored exactly as given.
func (p *Profile) Update(patch Patch) {
	if p == nil {
		return
	}
	merge(&p.Name, patch.Name)
	merge(&p.Company, patch.Company)
	merge(&p.Email, patch.Email)
	merge(&p.UseCase, patch.UseCase)
	merge(&p.Budget, patch.Budget)
	merge(&p.Timeline, patch.Timeline)
}

func merge(dst *string, src *string) {
	if src == nil || *src == "" {
		return
	}
	*dst = *src
}

// IsComplete reports whether the profile qualifies as a lead.
func (p *Profile) IsComplete() bool {
	return p != nil && p.Name != "" && p.UseCase != ""
}

// Missing returns the qualifying fields that are still empty.
func (p *Profile) Missing() []string {
	if p == nil {
		return []string{FieldName, FieldUseCase}
	}
	var missing []string
	if p.Name == "" {
		missing = append(missing, FieldName)
	}
	if p.UseCase == "" {
		missing = append(missing, FieldUseCase)
	}
	return missing
}

// Filled returns the names of all non-empty fields.
func (p *Profile) Filled() []string {
	if p == nil {
		return nil
	}
	var out []string
	for i, v := range p.values() {
		if v != "" {
			out = append(out, Fields[i])
		}
	}
	return out
}

func (p *Profile) values() []string {
	return []string{p.Name, p.Company, p.Email, p.UseCase, p.Budget, p.Timeline}
}

// Clone returns an independent copy.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

// Snapshot freezes the profile into a record captured at now.
func (p *Profile) Snapshot(now time.Time) Record {
	if p == nil {
		p = &Profile{}
	}
	return Record{
		Name:      nullable(p.Name),
		Company:   nullable(p.Company),
		Email:     nullable(p.Email),
		UseCase:   nullable(p.UseCase),
		Budget:    nullable(p.Budget),
		Timeline:  nullable(p.Timeline),
		Timestamp: now.UTC(),
	}
}

func nullable(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

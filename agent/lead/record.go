package lead

import "time"

// Record is the immutable, timestamped form of a Profile written to a lead store.
// Unset fields are nil and serialize as JSON null.
type Record struct {
	Name      *string   `json:"name"`
	Company   *string   `json:"company"`
	Email     *string   `json:"email"`
	UseCase   *string   `json:"use_case"`
	Budget    *string   `json:"budget"`
	Timeline  *string   `json:"timeline"`
	Timestamp time.Time `json:"timestamp"`
}

// IsComplete applies the Profile completeness rule to a stored record.
func (r Record) IsComplete() bool {
	return value(r.Name) != "" && value(r.UseCase) != ""
}

// Get returns the value of a named field, or "" when unset or unknown.
func (r Record) Get(field string) string {
	switch field {
	case FieldName:
		return value(r.Name)
	case FieldCompany:
		return value(r.Company)
	case FieldEmail:
		return value(r.Email)
	case FieldUseCase:
		return value(r.UseCase)
	case FieldBudget:
		return value(r.Budget)
	case FieldTimeline:
		return value(r.Timeline)
	default:
		return ""
	}
}

// Str returns a pointer to v, or nil for "".
func Str(v string) *string {
	return nullable(v)
}

func value(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

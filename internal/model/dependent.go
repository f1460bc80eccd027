package model

// Dependent is a child the matched-savings category contributes for.
type Dependent struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	BirthYear int    `json:"birth_year,omitempty"` // 0 when unknown
}

// DefaultMaxDependentAge is the last age at which contributions attract
// matching.
const DefaultMaxDependentAge = 17

// Eligible reports whether d counts toward matched savings in year. A
// dependent with no recorded birth year always counts.
func (d Dependent) Eligible(year, maxAge int) bool {
	if d.BirthYear == 0 {
		return true
	}
	age := year - d.BirthYear
	return age >= 0 && age <= maxAge
}

// EligibleCount counts the dependents eligible in year.
func EligibleCount(deps []Dependent, year, maxAge int) int {
	n := 0
	for _, d := range deps {
		if d.Eligible(year, maxAge) {
			n++
		}
	}
	return n
}

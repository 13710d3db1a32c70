package domain

// CargoItem is one declared goods line within a case. HSCode is the harmonized
// commodity code as declared (digits only, fixed length).
type CargoItem struct {
	ID          string
	CaseID      string
	HSCode      string
	Description string
	Weight      float64
	Value       float64
	Currency    string
}

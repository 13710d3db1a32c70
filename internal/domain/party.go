package domain

import "time"

// Vehicle is the conveyance a case arrived on.
type Vehicle struct {
	ID      string
	PlateNo string
	Country string
	Make    string
	Model   string
	VIN     string
}

// PartyRole describes how a party relates to a case.
type PartyRole string

const (
	RoleDeclarant PartyRole = "declarant"
	RoleConsignee PartyRole = "consignee"
	RoleCarrier   PartyRole = "carrier"
)

// Party is a legal or natural person involved in one or more cases.
type Party struct {
	ID             string
	Name           string
	Type           string
	Country        string
	RegistrationNo string
}

// CaseParty links a party to a case with its role.
type CaseParty struct {
	CaseID  string
	PartyID string
	Role    PartyRole
}

// Document is file metadata attached to a case. Actual file storage and
// signed-URL issuance live outside this module.
type Document struct {
	ID         string
	CaseID     string
	Type       string
	FilePath   string
	UploadedAt *time.Time
}

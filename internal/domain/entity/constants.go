package entity

// Company codes recognized by the deployment. The set is configuration, not
// inferred from ledger data.
const (
	CompanyAsesores = "S001"
	CompanyGrupoBPO = "S005"
	CompanySelier   = "S010"
)

// DefaultCompanies is the closed set of legal entities in the current deployment.
var DefaultCompanies = []string{CompanyAsesores, CompanyGrupoBPO, CompanySelier}

// DefaultCompanyNames maps company codes to display names.
var DefaultCompanyNames = map[string]string{
	CompanyAsesores: "Asesores Titulados",
	CompanyGrupoBPO: "Grupo Atisa BPO",
	CompanySelier:   "Selier by Atisa",
}

// DefaultExcludedTypes are invoice type codes never counted as receivables.
var DefaultExcludedTypes = []string{"AA", "ZZ"}

// DefaultCollective is the accounting collective used as a hard filter.
const DefaultCollective = "4300"

// Follow-up action kinds.
const (
	ActionKindEmail = "Email"
	ActionKindCall  = "Llamada"
	ActionKindTeams = "Teams"
)

// Placeholders used when client enrichment finds no record.
const (
	UnknownClientName = "Sin nombre"
	UnknownClientCIF  = "Sin CIF"
)

// Default presentation limits.
const (
	DefaultTopCompanies = 50
	DefaultOverduePage  = 50
)

package envrequests

import "time"

// Status del ciclo de vida de una solicitud de entorno.
type Status string

const (
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
)

// DefaultRequestedBy se usa cuando la solicitud llega sin identidad.
const DefaultRequestedBy = "anonymous"

// EnvRequest es una solicitud de entorno de cómputo (notebook, IDE, etc).
type EnvRequest struct {
	ID string

	EnvName    string
	EnvPurpose string
	UseCase    string
	DataDomain string

	InstanceType    string
	IDEOption       string // jupyter, vscode, ...
	FrameworkOption string // opcional

	RequestedBy string
	Status      Status
	CreatedAt   time.Time
}

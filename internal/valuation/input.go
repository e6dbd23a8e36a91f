package valuation

import "math"

// Tier0Input is the raw tender and firm profile for one project. Amounts are
// in the deployment's currency unit (millions in the reference data).
type Tier0Input struct {
	ProjectID          string          `json:"project_id"`
	ContractAmount     float64         `json:"contract_amount"`
	InfraType          InfraType       `json:"infra_type"`
	DesignPhase        DesignPhase     `json:"design_phase"`
	ContractDuration   float64         `json:"contract_duration"`
	ProcurementType    ProcurementType `json:"procurement_type"`
	ClientType         ClientType      `json:"client_type"`
	FirmSize           FirmSize        `json:"firm_size"`
	BIMYears           int             `json:"bim_years"`
	SameTypeCount      int             `json:"same_type_count"`
	CurrentUtilization float64         `json:"current_utilization"`
}

// Validate returns the first problem found as a *ValidationError.
func (in Tier0Input) Validate() error {
	switch {
	case in.ProjectID == "":
		return &ValidationError{Field: "project_id", Value: `""`, Reason: "must not be empty"}
	case !finitePositive(in.ContractAmount):
		return &ValidationError{Field: "contract_amount", Value: in.ContractAmount, Reason: "must be a positive number"}
	case !in.InfraType.valid():
		return invalidEnum("infra_type", string(in.InfraType))
	case !in.DesignPhase.valid():
		return invalidEnum("design_phase", string(in.DesignPhase))
	case !finitePositive(in.ContractDuration):
		return &ValidationError{Field: "contract_duration", Value: in.ContractDuration, Reason: "must be a positive number of years"}
	case !in.ProcurementType.valid():
		return invalidEnum("procurement_type", string(in.ProcurementType))
	case !in.ClientType.valid():
		return invalidEnum("client_type", string(in.ClientType))
	case !in.FirmSize.valid():
		return invalidEnum("firm_size", string(in.FirmSize))
	case in.BIMYears < 0:
		return &ValidationError{Field: "bim_years", Value: in.BIMYears, Reason: "must not be negative"}
	case in.SameTypeCount < 0:
		return &ValidationError{Field: "same_type_count", Value: in.SameTypeCount, Reason: "must not be negative"}
	case math.IsNaN(in.CurrentUtilization) || in.CurrentUtilization < 0 || in.CurrentUtilization > 1:
		return &ValidationError{Field: "current_utilization", Value: in.CurrentUtilization, Reason: "must be within [0, 1]"}
	}
	return nil
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

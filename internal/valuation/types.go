package valuation

import "strings"

type InfraType string

const (
	InfraRoad   InfraType = "Road"
	InfraBridge InfraType = "Bridge"
	InfraTunnel InfraType = "Tunnel"
)

type DesignPhase string

const (
	PhaseBasic    DesignPhase = "Basic"
	PhaseDetailed DesignPhase = "Detailed"
)

type ProcurementType string

const (
	ProcurementOpen       ProcurementType = "Open"
	ProcurementLimited    ProcurementType = "Limited"
	ProcurementNegotiated ProcurementType = "Negotiated"
)

type ClientType string

const (
	ClientCentral    ClientType = "Central"
	ClientPublicCorp ClientType = "PublicCorp"
	ClientLocal      ClientType = "Local"
)

type FirmSize string

const (
	FirmLarge  FirmSize = "Large"
	FirmMedium FirmSize = "Medium"
	FirmSmall  FirmSize = "Small"
)

// Decision is one of the four TPV categories, or the binary NPV-only call.
type Decision string

const (
	DecisionStrongParticipate Decision = "Strong Participate"
	DecisionParticipate       Decision = "Participate"
	DecisionConditional       Decision = "Conditional"
	DecisionReject            Decision = "Reject"
)

type Direction string

const (
	DirectionUp       Direction = "Up"
	DirectionDown     Direction = "Down"
	DirectionNoChange Direction = "No Change"
)

// Tender announcements and firm profiles arrive in several spellings,
// including the Korean procurement labels. Keys are normalized with aliasKey.
var infraAliases = map[string]InfraType{
	"road":   InfraRoad,
	"도로":     InfraRoad,
	"bridge": InfraBridge,
	"교량":     InfraBridge,
	"tunnel": InfraTunnel,
	"터널":     InfraTunnel,
}

var phaseAliases = map[string]DesignPhase{
	"basic":          PhaseBasic,
	"basicdesign":    PhaseBasic,
	"기본설계":           PhaseBasic,
	"detailed":       PhaseDetailed,
	"detaileddesign": PhaseDetailed,
	"실시설계":           PhaseDetailed,
}

var procurementAliases = map[string]ProcurementType{
	"open":       ProcurementOpen,
	"일반경쟁":       ProcurementOpen,
	"limited":    ProcurementLimited,
	"제한경쟁":       ProcurementLimited,
	"negotiated": ProcurementNegotiated,
	"nominated":  ProcurementNegotiated,
	"지명경쟁":       ProcurementNegotiated,
}

var clientAliases = map[string]ClientType{
	"central":    ClientCentral,
	"중앙":         ClientCentral,
	"publiccorp": ClientPublicCorp,
	"공기업":        ClientPublicCorp,
	"local":      ClientLocal,
	"지방":         ClientLocal,
}

var firmAliases = map[string]FirmSize{
	"large":  FirmLarge,
	"대기업":    FirmLarge,
	"medium": FirmMedium,
	"중견기업":   FirmMedium,
	"small":  FirmSmall,
	"소기업":    FirmSmall,
}

var separators = strings.NewReplacer(" ", "", "_", "", "-", "")

func aliasKey(s string) string {
	return separators.Replace(strings.ToLower(strings.TrimSpace(s)))
}

func ParseInfraType(s string) (InfraType, error) {
	if v, ok := infraAliases[aliasKey(s)]; ok {
		return v, nil
	}
	return "", invalidEnum("infra_type", s)
}

func ParseDesignPhase(s string) (DesignPhase, error) {
	if v, ok := phaseAliases[aliasKey(s)]; ok {
		return v, nil
	}
	return "", invalidEnum("design_phase", s)
}

func ParseProcurementType(s string) (ProcurementType, error) {
	if v, ok := procurementAliases[aliasKey(s)]; ok {
		return v, nil
	}
	return "", invalidEnum("procurement_type", s)
}

func ParseClientType(s string) (ClientType, error) {
	if v, ok := clientAliases[aliasKey(s)]; ok {
		return v, nil
	}
	return "", invalidEnum("client_type", s)
}

func ParseFirmSize(s string) (FirmSize, error) {
	if v, ok := firmAliases[aliasKey(s)]; ok {
		return v, nil
	}
	return "", invalidEnum("firm_size", s)
}

func (t InfraType) valid() bool {
	_, ok := typeComplexity[t]
	return ok
}

func (p DesignPhase) valid() bool { return p == PhaseBasic || p == PhaseDetailed }

func (p ProcurementType) valid() bool {
	_, ok := competitionByProcurement[p]
	return ok
}

func (c ClientType) valid() bool {
	return c == ClientCentral || c == ClientPublicCorp || c == ClientLocal
}

func (f FirmSize) valid() bool {
	return f == FirmLarge || f == FirmMedium || f == FirmSmall
}

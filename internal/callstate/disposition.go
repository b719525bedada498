package callstate

import "strings"

// Disposition is the classified call-type category driving specialist
// routing. It is a named string rather than a closed enum on purpose: the
// routing agent stores the model's lowercased, trimmed reply verbatim without
// validating membership, and the orchestrator's branch table sends every
// unknown tag down one documented default branch.
type Disposition string

// Dispositions the routing agent is prompted to choose from.
const (
	DispositionAuthorization Disposition = "authorization"
	DispositionClaimsInquiry Disposition = "claims_inquiry"
	DispositionBenefits      Disposition = "benefits"
	DispositionGrievance     Disposition = "grievance"
	DispositionEnrollment    Disposition = "enrollment"
	DispositionGeneral       Disposition = "general"
)

// RoutingDispositions lists the categories offered to the routing agent.
var RoutingDispositions = []Disposition{
	DispositionAuthorization,
	DispositionClaimsInquiry,
	DispositionBenefits,
	DispositionGrievance,
	DispositionEnrollment,
	DispositionGeneral,
}

// NormalizeDisposition converts a raw model reply into a Disposition the way
// the routing agent does: lowercase, trimmed, and otherwise verbatim.
func NormalizeDisposition(raw string) Disposition {
	return Disposition(strings.ToLower(strings.TrimSpace(raw)))
}

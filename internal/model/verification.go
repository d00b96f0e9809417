package model

// VerificationInfo is the outcome of a source-verification lookup. Absence
// of verification only changes message presentation, never the alert decision.
type VerificationInfo struct {
	Verified     bool
	ContractName string
	SourceCode   string
}

// Package xnap holds a slice of the XnAP (3GPP TS 38.423) message catalog
// built on the PER and container engines: node identities, Cause,
// CriticalityDiagnostics and the ErrorIndication and XnSetupFailure
// messages.
package xnap

// ProcedureCode values
const (
	ProcedureXnSetup         uint8 = 17
	ProcedureErrorIndication uint8 = 21
)

// ProtocolIE-ID values
const (
	IDCause                  uint32 = 7
	IDCriticalityDiagnostics uint32 = 10
	IDGlobalNGRANNodeID      uint32 = 14
	IDNewNGRANnodeUEXnAPID   uint32 = 27
	IDOldNGRANnodeUEXnAPID   uint32 = 29
	IDTimeToWait             uint32 = 38
)

// Upper bounds
const (
	MAX_NR_OF_ERRORS = 256
)

package xnap

import (
	"github.com/thebagchi/xnap-go/lib/ie"
)

// Extension catalogs of the types above. None of them defines an extension
// in this release, so every received extension is unknown and handled by
// its criticality.
var (
	SNSSAIExtIEs                       = ie.NewTable("S-NSSAI-ExtIEs")
	NRCGIExtIEs                        = ie.NewTable("NR-CGI-ExtIEs")
	GNBIDChoiceExtIEs                  = ie.NewTable("GNB-ID-Choice-ExtIEs")
	GlobalgNBIDExtIEs                  = ie.NewTable("GlobalgNB-ID-ExtIEs")
	ENBIDChoiceExtIEs                  = ie.NewTable("ENB-ID-Choice-ExtIEs")
	GlobalngeNBIDExtIEs                = ie.NewTable("GlobaleNB-ID-ExtIEs")
	GlobalNGRANNodeIDExtIEs            = ie.NewTable("GlobalNG-RANNode-ID-ExtIEs")
	CauseExtIEs                        = ie.NewTable("Cause-ExtIEs")
	CriticalityDiagnosticsExtIEs       = ie.NewTable("CriticalityDiagnostics-ExtIEs")
	CriticalityDiagnosticsIEListExtIEs = ie.NewTable("CriticalityDiagnostics-IE-List-ExtIEs")
)

package tools

import "fmt"

// Subdetector identifies the DAQ system a channel belongs to.
type Subdetector uint8

const (
	SubdetectorADC Subdetector = iota
	SubdetectorTDC
)

func (s Subdetector) String() string {
	switch s {
	case SubdetectorADC:
		return "ADC"
	case SubdetectorTDC:
		return "TDC"
	default:
		return "Unknown"
	}
}

// ChannelKey identifies a single readout channel.
type ChannelKey struct {
	Detector Subdetector
	ID       uint32
}

func (k ChannelKey) String() string {
	return fmt.Sprintf("%s/%d", k.Detector, k.ID)
}

// ADCPulse is one pulse found by the upstream hit finder. Times are in
// ns relative to the start of the minibuffer, amplitudes in V, charges
// in nC, raw amplitudes in ADC counts.
type ADCPulse struct {
	StartTime     int64   `json:"start_time"`
	PeakTime      int64   `json:"peak_time"`
	Baseline      float64 `json:"baseline"`
	SigmaBaseline float64 `json:"sigma_baseline"`
	RawAmplitude  uint16  `json:"raw_amplitude"`
	Amplitude     float64 `json:"amplitude"`
	Charge        float64 `json:"charge"`
}

// ADCHits maps each channel to its pulses, outer index = minibuffer.
type ADCHits map[ChannelKey][][]ADCPulse

// MinibufferLabel classifies what triggered a minibuffer readout.
type MinibufferLabel uint8

const (
	MinibufferUnknown MinibufferLabel = iota
	MinibufferLED
	MinibufferSoft
	MinibufferBeam
	MinibufferCosmic
	MinibufferSource
	MinibufferHefty
	MinibufferHeftySource
)

var minibufferLabelNames = map[MinibufferLabel]string{
	MinibufferUnknown:     "Unknown",
	MinibufferLED:         "LED",
	MinibufferSoft:        "Soft",
	MinibufferBeam:        "Beam",
	MinibufferCosmic:      "Cosmic",
	MinibufferSource:      "Source",
	MinibufferHefty:       "Hefty",
	MinibufferHeftySource: "HeftySource",
}

func (l MinibufferLabel) String() string {
	name, ok := minibufferLabelNames[l]
	if !ok {
		return "Unknown"
	}
	return name
}

// ParseMinibufferLabel maps a label name to its enum value. Unknown
// names map to MinibufferUnknown without error so that files written
// by newer tools stay readable.
func ParseMinibufferLabel(name string) MinibufferLabel {
	for label, labelName := range minibufferLabelNames {
		if labelName == name {
			return label
		}
	}
	return MinibufferUnknown
}

// HeftyInfo carries the per-minibuffer timing of a Hefty-mode readout.
// Times are ns offsets of each minibuffer relative to the beam gate;
// Masks are the hardware trigger masks.
type HeftyInfo struct {
	Times []int64 `json:"times"`
	Masks []int32 `json:"masks"`
}

// Hefty reports whether the event was taken in Hefty mode. Non-Hefty
// runs carry no minibuffer offsets.
func (h HeftyInfo) Hefty() bool {
	return len(h.Times) > 0
}

// Offset returns the time offset of a minibuffer, 0 when out of range
// or in non-Hefty mode.
func (h HeftyInfo) Offset(minibuffer int) int64 {
	if minibuffer < 0 || minibuffer >= len(h.Times) {
		return 0
	}
	return h.Times[minibuffer]
}

// Mask returns the trigger mask of a minibuffer, 0 when out of range.
func (h HeftyInfo) Mask(minibuffer int) int32 {
	if minibuffer < 0 || minibuffer >= len(h.Masks) {
		return 0
	}
	return h.Masks[minibuffer]
}

// BeamStatus holds the beam-quality measurements for one spill as
// recorded by the beam database.
type BeamStatus struct {
	POT               float64 `json:"pot"`
	HornCurrent       float64 `json:"horn_current"`       // kA
	Toroid875         float64 `json:"toroid_875"`         // POT measured by toroid E:TOR875
	Toroid860         float64 `json:"toroid_860"`         // POT measured by toroid E:TOR860
	Timestamp         int64   `json:"timestamp"`          // ms, beam database
	RecordedTimestamp int64   `json:"recorded_timestamp"` // ms, DAQ
	Ok                bool    `json:"ok"`
}

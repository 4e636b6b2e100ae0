package tools

import (
	"fmt"

	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/riofs"
	"go-hep.org/x/hep/groot/rtree"
)

// Branch variables of the phaseI event tree. One entry per NCV
// coincidence, whether or not it passed the quality cuts.
type PhaseIEvent struct {
	RunNumber    uint32 `groot:"run_number"`
	SubrunNumber uint32 `groot:"subrun_number"`
	EventNumber  uint32 `groot:"event_number"`
	NCVPosition  int32  `groot:"ncv_position"`
	EventTimeNS  int64  `groot:"event_time_ns"`
	EventLabel   uint8  `groot:"label"`
	HeftyMode    bool   `groot:"hefty_mode"`
	HeftyMask    int32  `groot:"hefty_trigger_mask"`

	AmplitudeNCV1    float64 `groot:"amplitude_ncv1"`     // V
	AmplitudeNCV2    float64 `groot:"amplitude_ncv2"`     // V
	ChargeNCV1       float64 `groot:"charge_ncv1"`        // nC
	ChargeNCV2       float64 `groot:"charge_ncv2"`        // nC
	RawAmplitudeNCV1 uint16  `groot:"raw_amplitude_ncv1"` // ADC counts
	RawAmplitudeNCV2 uint16  `groot:"raw_amplitude_ncv2"` // ADC counts

	NCV1Fired       bool  `groot:"ncv1_fired"`
	NCV2Fired       bool  `groot:"ncv2_fired"`
	NCV1PulseTimeNS int64 `groot:"ncv1_pulse_time_ns"`
	NCV2PulseTimeNS int64 `groot:"ncv2_pulse_time_ns"`

	TankCharge           float64 `groot:"tank_charge"` // nC
	UniqueHitWaterPMTs   int32   `groot:"unique_hit_water_pmts"`
	TimeSinceLastEventNS int64   `groot:"time_since_last_event_ns"`

	PassedAfterpulseCut     bool `groot:"passed_afterpulse_cut"`
	PassedUniqueWaterPMTCut bool `groot:"passed_unique_water_pmt_cut"`
	PassedTankChargeCut     bool `groot:"passed_tank_charge_cut"`
}

// Branch variables of the pulse tree. One entry per ADC pulse found by
// the upstream hit finder, coincidence or not.
type PulseRecord struct {
	RunNumber        uint32  `groot:"run_number"`
	SubrunNumber     uint32  `groot:"subrun_number"`
	EventNumber      uint32  `groot:"event_number"`
	MinibufferNumber uint32  `groot:"minibuffer_number"`
	StartTimeNS      int64   `groot:"pulse_start_time_ns"`
	Amplitude        float64 `groot:"pulse_amplitude"` // V
	Charge           float64 `groot:"pulse_charge"`    // nC
	RawAmplitude     uint16  `groot:"pulse_raw_amplitude"`
	PMTID            int32   `groot:"pulse_pmt_id"`
	SpillNumber      uint32  `groot:"spill_number"`
	InSpill          bool    `groot:"in_spill"`
}

// Branch variables of the beam tree. One entry per beam minibuffer.
type BeamRecord struct {
	RunNumber        uint32  `groot:"run_number"`
	SubrunNumber     uint32  `groot:"subrun_number"`
	EventNumber      uint32  `groot:"event_number"`
	MinibufferNumber uint32  `groot:"minibuffer_number"`
	POT              float64 `groot:"pot"`
	HornCurrent      float64 `groot:"horn_current"` // kA
	POTOk            bool    `groot:"pot_ok"`
	HornCurrentOk    bool    `groot:"horn_current_ok"`
	TimestampsOk     bool    `groot:"timestamps_ok"`
	ToroidsAgree     bool    `groot:"toroids_agree"`
}

// Branch variables of the pot tree. One entry per NCV position,
// written at Finalise.
type PotRecord struct {
	NCVPosition       int32   `groot:"ncv_position"`
	RunNumber         uint32  `groot:"run_number"`
	SubrunNumber      uint32  `groot:"subrun_number"`
	TotalPOT          float64 `groot:"total_pot"`
	NumBeamSpills     uint64  `groot:"num_beam_spills"`
	NumSourceTriggers uint64  `groot:"num_source_triggers"`
	NumCosmicTriggers uint64  `groot:"num_cosmic_triggers"`
	NumSoftTriggers   uint64  `groot:"num_soft_triggers"`
	NumLEDTriggers    uint64  `groot:"num_led_triggers"`
}

// TreeWriter owns the ROOT output file and its four trees. Tools fill
// the exported branch structs and call the matching Fill method.
type TreeWriter struct {
	File     *riofs.File
	Filename string

	Event PhaseIEvent
	Pulse PulseRecord
	Beam  BeamRecord
	Pot   PotRecord

	eventTree rtree.Writer
	pulseTree rtree.Writer
	beamTree  rtree.Writer
	potTree   rtree.Writer

	EventsWritten int
	PulsesWritten int
}

func NewTreeWriter(filename string) (*TreeWriter, error) {
	file, err := groot.Create(filename)
	if err != nil {
		return nil, &ErrOpenFile{Filename: filename, Err: err}
	}

	w := &TreeWriter{File: file, Filename: filename}

	w.eventTree, err = rtree.NewWriter(file, "phaseI",
		rtree.WriteVarsFromStruct(&w.Event),
		rtree.WithTitle("NCV coincidence events"))
	if err != nil {
		return nil, &ErrCreateTree{TreeName: "phaseI", Err: err}
	}
	w.pulseTree, err = rtree.NewWriter(file, "pulse",
		rtree.WriteVarsFromStruct(&w.Pulse),
		rtree.WithTitle("ADC pulses"))
	if err != nil {
		return nil, &ErrCreateTree{TreeName: "pulse", Err: err}
	}
	w.beamTree, err = rtree.NewWriter(file, "beam",
		rtree.WriteVarsFromStruct(&w.Beam),
		rtree.WithTitle("beam quality"))
	if err != nil {
		return nil, &ErrCreateTree{TreeName: "beam", Err: err}
	}
	w.potTree, err = rtree.NewWriter(file, "pot",
		rtree.WriteVarsFromStruct(&w.Pot),
		rtree.WithTitle("POT and exposure per NCV position"))
	if err != nil {
		return nil, &ErrCreateTree{TreeName: "pot", Err: err}
	}
	return w, nil
}

func (w *TreeWriter) FillEvent() error {
	_, err := w.eventTree.Write()
	if err != nil {
		return fmt.Errorf("error filling phaseI tree: %w", err)
	}
	w.EventsWritten++
	return nil
}

func (w *TreeWriter) FillPulse() error {
	_, err := w.pulseTree.Write()
	if err != nil {
		return fmt.Errorf("error filling pulse tree: %w", err)
	}
	w.PulsesWritten++
	return nil
}

func (w *TreeWriter) FillBeam() error {
	_, err := w.beamTree.Write()
	if err != nil {
		return fmt.Errorf("error filling beam tree: %w", err)
	}
	return nil
}

func (w *TreeWriter) FillPot() error {
	_, err := w.potTree.Write()
	if err != nil {
		return fmt.Errorf("error filling pot tree: %w", err)
	}
	return nil
}

func (w *TreeWriter) Close() error {
	var errs []error

	if err := w.eventTree.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing phaseI tree: %w", err))
	}
	if err := w.pulseTree.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing pulse tree: %w", err))
	}
	if err := w.beamTree.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing beam tree: %w", err))
	}
	if err := w.potTree.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing pot tree: %w", err))
	}
	if err := w.File.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing file %q: %w", w.Filename, err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing tree writer: %v", errs)
	}
	return nil
}

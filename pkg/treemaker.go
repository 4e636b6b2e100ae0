package tools

import (
	"fmt"
	"math"

	sqlx "github.com/jmoiron/sqlx"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// NCVPositionInfo accumulates the exposure seen while the NCV sat at
// one position: delivered POT and the trigger counts per type.
type NCVPositionInfo struct {
	TotalPOT          float64
	NumBeamSpills     uint64
	NumSourceTriggers uint64
	NumCosmicTriggers uint64
	NumSoftTriggers   uint64
	NumLEDTriggers    uint64
	Run               uint32
	Subrun            uint32
}

// PhaseITreeMaker makes the ROOT trees needed to reproduce the plots
// from the Phase I publication about beam-induced neutron backgrounds:
// an NCV coincidence tree, a pulse tree, a beam-quality tree and a
// per-position exposure tree.
type PhaseITreeMaker struct {
	verbosity int

	// The time (in ns) to use when applying the afterpulsing veto
	afterpulsingVetoTime int64
	// The time interval over which to compute the tank charge for
	// each NCV coincidence event
	tankChargeWindowLength int64
	// The maximum number of unique water PMTs to allow for a neutron
	// candidate event
	maxUniqueWaterPMTs int
	// The maximum tank charge (in nC) to allow for a neutron
	// candidate event
	maxTankCharge float64
	// The maximum allowed time between NCV PMT pulses for them to
	// count as a "coincidence"
	ncvCoincidenceTolerance int64

	ncvPMT1ID uint32
	ncvPMT2ID uint32

	dbConn         *sqlx.DB
	positionRanges []NCVPositionEntry

	writer  *TreeWriter
	plots   *PlotSet
	summary *SummaryWriter

	positionInfo map[int]*NCVPositionInfo
	spillNumber  uint32
}

func NewPhaseITreeMaker(dbConn *sqlx.DB) *PhaseITreeMaker {
	return &PhaseITreeMaker{dbConn: dbConn}
}

func (t *PhaseITreeMaker) Name() string { return "PhaseITreeMaker" }

func (t *PhaseITreeMaker) Initialise(config Configuration, data *DataModel) error {
	t.verbosity = config.Verbosity
	t.afterpulsingVetoTime = config.AfterpulsingVetoTime
	t.tankChargeWindowLength = config.TankChargeWindowLength
	t.maxUniqueWaterPMTs = config.MaxUniqueWaterPMTs
	t.maxTankCharge = config.MaxTankCharge
	t.ncvCoincidenceTolerance = config.NCVCoincidenceTolerance
	t.ncvPMT1ID = config.NCVPmt1ID
	t.ncvPMT2ID = config.NCVPmt2ID
	t.positionInfo = make(map[int]*NCVPositionInfo)

	t.positionRanges = defaultNCVPositionRanges
	if !config.NoDB && t.dbConn != nil {
		entries, err := getNCVPositionsFromDB(t.dbConn)
		if err != nil {
			errMessage := fmt.Errorf("error getting NCV positions from database: %w", err)
			logger.Error(errMessage.Error())
			return errMessage
		}
		if len(entries) > 0 {
			t.positionRanges = entries
		}
	}

	writer, err := NewTreeWriter(config.FileOut)
	if err != nil {
		return err
	}
	t.writer = writer

	if config.WritePlots {
		t.plots = NewPlotSet(config.NCVCoincidenceTolerance)
	}
	if config.WriteHDF5 {
		t.summary = NewSummaryWriter(config.HDF5File)
	}
	return nil
}

func (t *PhaseITreeMaker) Execute(data *DataModel) error {
	store := data.Store(ANNIEEventStore)

	runNumber, err := getObjectFromStore[uint32](store, KeyRunNumber, t.verbosity)
	if err != nil {
		return err
	}
	subrunNumber, err := getObjectFromStore[uint32](store, KeySubrunNumber, t.verbosity)
	if err != nil {
		return err
	}
	eventNumber, err := getObjectFromStore[uint32](store, KeyEventNumber, t.verbosity)
	if err != nil {
		return err
	}
	adcHits, err := getObjectFromStore[ADCHits](store, KeyADCHits, t.verbosity)
	if err != nil {
		return err
	}
	labels, err := getObjectFromStore[[]MinibufferLabel](store, KeyMinibufferLabels, t.verbosity)
	if err != nil {
		return err
	}
	if len(adcHits) == 0 {
		return fmt.Errorf("found an empty %q entry", KeyADCHits)
	}
	if len(labels) == 0 {
		return fmt.Errorf("found an empty %q entry", KeyMinibufferLabels)
	}

	// Hefty info and beam status may legitimately be absent: non-Hefty
	// runs have no minibuffer offsets and source runs have no beam.
	heftyInfo, _ := GetFromStore[HeftyInfo](store, KeyHeftyInfo)
	beamStatus, haveBeam := func() (BeamStatus, bool) {
		b, err := GetFromStore[BeamStatus](store, KeyBeamStatus)
		return b, err == nil
	}()

	position := ncvPositionForRun(runNumber, t.positionRanges)
	info, ok := t.positionInfo[position]
	if !ok {
		info = &NCVPositionInfo{Run: runNumber, Subrun: subrunNumber}
		t.positionInfo[position] = info
	}

	config := GetConfiguration()

	// Pulses on NCV PMT #1 must only be vetoed by earlier accepted
	// events, so the veto clock starts far in the past.
	oldTime := int64(math.MinInt64 / 2)

	for mb, label := range labels {
		switch label {
		case MinibufferBeam:
			if !haveBeam {
				return fmt.Errorf("found a beam minibuffer without a %q entry", KeyBeamStatus)
			}
			info.NumBeamSpills++
			t.spillNumber++

			flags := beamQuality(beamStatus, config)
			if flags.good() {
				info.TotalPOT += beamStatus.POT
			}

			t.writer.Beam = BeamRecord{
				RunNumber:        runNumber,
				SubrunNumber:     subrunNumber,
				EventNumber:      eventNumber,
				MinibufferNumber: uint32(mb),
				POT:              beamStatus.POT,
				HornCurrent:      beamStatus.HornCurrent,
				POTOk:            flags.potOK,
				HornCurrentOk:    flags.hornCurrentOK,
				TimestampsOk:     flags.timestampsOK,
				ToroidsAgree:     flags.toroidsAgree,
			}
			if err := t.writer.FillBeam(); err != nil {
				return err
			}
		case MinibufferSource, MinibufferHeftySource:
			info.NumSourceTriggers++
		case MinibufferCosmic:
			info.NumCosmicTriggers++
		case MinibufferSoft:
			info.NumSoftTriggers++
		case MinibufferLED:
			info.NumLEDTriggers++
		}

		if err := t.fillPulseTree(runNumber, subrunNumber, eventNumber, adcHits, mb, label); err != nil {
			return err
		}

		if err := t.findNCVEvents(runNumber, subrunNumber, eventNumber, adcHits,
			heftyInfo, label, mb, position, &oldTime); err != nil {
			return err
		}
	}
	return nil
}

func (t *PhaseITreeMaker) Finalise() error {
	var errs []error

	positions := maps.Keys(t.positionInfo)
	slices.Sort(positions)
	for _, position := range positions {
		info := t.positionInfo[position]
		t.writer.Pot = PotRecord{
			NCVPosition:       int32(position),
			RunNumber:         info.Run,
			SubrunNumber:      info.Subrun,
			TotalPOT:          info.TotalPOT,
			NumBeamSpills:     info.NumBeamSpills,
			NumSourceTriggers: info.NumSourceTriggers,
			NumCosmicTriggers: info.NumCosmicTriggers,
			NumSoftTriggers:   info.NumSoftTriggers,
			NumLEDTriggers:    info.NumLEDTriggers,
		}
		if err := t.writer.FillPot(); err != nil {
			errs = append(errs, err)
		}
	}

	if t.verbosity > 0 {
		message := fmt.Sprintf("Wrote %d NCV events and %d pulses to %s",
			t.writer.EventsWritten, t.writer.PulsesWritten, t.writer.Filename)
		logger.Info(message, "PhaseITreeMaker")
	}

	if t.plots != nil {
		if err := t.plots.Save(GetConfiguration().PlotsDir); err != nil {
			errs = append(errs, fmt.Errorf("error saving plots: %w", err))
		}
	}
	if t.summary != nil {
		if err := t.summary.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing HDF5 summary: %w", err))
		}
	}
	if err := t.writer.Close(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("finalise errors: %v", errs)
	}
	return nil
}

// PositionInfo exposes the per-position exposure bookkeeping.
func (t *PhaseITreeMaker) PositionInfo() map[int]*NCVPositionInfo {
	return t.positionInfo
}

// Writer exposes the tree writer, mostly for inspection after a run.
func (t *PhaseITreeMaker) Writer() *TreeWriter {
	return t.writer
}

// getObjectFromStore wraps GetFromStore with the tool's logging.
func getObjectFromStore[T any](s *Store, key string, verbosity int) (T, error) {
	if verbosity > 3 {
		logger.Info(fmt.Sprintf("Retrieving %q from the %s store", key, s.Name()), "PhaseITreeMaker")
	}
	value, err := GetFromStore[T](s, key)
	if err != nil {
		logger.Error(err.Error())
	}
	return value, err
}

// findNCVEvents scans the NCV PMT #1 pulses of one minibuffer in time
// order and records every coincidence with NCV PMT #2, applying the
// afterpulsing veto and the tank cuts.
func (t *PhaseITreeMaker) findNCVEvents(runNumber, subrunNumber, eventNumber uint32,
	adcHits ADCHits, heftyInfo HeftyInfo, label MinibufferLabel,
	minibuffer, position int, oldTime *int64) error {

	ncv1Pulses := pulsesInMinibuffer(adcHits, ChannelKey{Detector: SubdetectorADC, ID: t.ncvPMT1ID}, minibuffer)
	ncv2Pulses := pulsesInMinibuffer(adcHits, ChannelKey{Detector: SubdetectorADC, ID: t.ncvPMT2ID}, minibuffer)
	if len(ncv1Pulses) == 0 {
		return nil
	}

	sorted := slices.Clone(ncv1Pulses)
	slices.SortFunc(sorted, func(a, b ADCPulse) int {
		switch {
		case a.StartTime < b.StartTime:
			return -1
		case a.StartTime > b.StartTime:
			return 1
		default:
			return 0
		}
	})

	heftyMode := heftyInfo.Hefty()
	for i := range sorted {
		pulse1 := &sorted[i]
		eventTime := pulse1.StartTime
		if heftyMode {
			eventTime += heftyInfo.Offset(minibuffer)
		}

		passedAfterpulse := eventTime-*oldTime >= t.afterpulsingVetoTime

		// Coincidence matching happens in minibuffer-local time since
		// both NCV PMTs share the readout window.
		pulse2 := findCoincidentPulse(ncv2Pulses, pulse1.StartTime, t.ncvCoincidenceTolerance)
		if pulse2 == nil {
			continue
		}

		tankCharge, uniquePMTs := t.computeTankCharge(adcHits, minibuffer,
			pulse1.StartTime, pulse1.StartTime+t.tankChargeWindowLength)

		t.writer.Event = PhaseIEvent{
			RunNumber:    runNumber,
			SubrunNumber: subrunNumber,
			EventNumber:  eventNumber,
			NCVPosition:  int32(position),
			EventTimeNS:  eventTime,
			EventLabel:   uint8(label),
			HeftyMode:    heftyMode,
			HeftyMask:    heftyInfo.Mask(minibuffer),

			AmplitudeNCV1:    pulse1.Amplitude,
			AmplitudeNCV2:    pulse2.Amplitude,
			ChargeNCV1:       pulse1.Charge,
			ChargeNCV2:       pulse2.Charge,
			RawAmplitudeNCV1: pulse1.RawAmplitude,
			RawAmplitudeNCV2: pulse2.RawAmplitude,

			NCV1Fired:       true,
			NCV2Fired:       true,
			NCV1PulseTimeNS: pulse1.StartTime,
			NCV2PulseTimeNS: pulse2.StartTime,

			TankCharge:           tankCharge,
			UniqueHitWaterPMTs:   int32(uniquePMTs),
			TimeSinceLastEventNS: eventTime - *oldTime,

			PassedAfterpulseCut:     passedAfterpulse,
			PassedUniqueWaterPMTCut: uniquePMTs <= t.maxUniqueWaterPMTs,
			PassedTankChargeCut:     tankCharge <= t.maxTankCharge,
		}
		*oldTime = eventTime

		if t.verbosity > 2 {
			message := fmt.Sprintf("NCV coincidence at %d ns in minibuffer %d (tank charge %.3f nC, %d water PMTs)",
				eventTime, minibuffer, tankCharge, uniquePMTs)
			logger.Info(message, "PhaseITreeMaker")
		}

		if err := t.writer.FillEvent(); err != nil {
			return err
		}
		if t.plots != nil {
			t.plots.FillCoincidence(pulse1.Charge, pulse2.StartTime-pulse1.StartTime)
		}
		if t.summary != nil {
			t.summary.WriteEventSummary(EventSummaryHDF5{
				evt_number:        int32(eventNumber),
				event_time_ns:     eventTime,
				ncv_position:      int32(position),
				tank_charge:       tankCharge,
				unique_water_pmts: int32(uniquePMTs),
			})
		}
	}
	return nil
}

// fillPulseTree records every ADC pulse of one minibuffer.
func (t *PhaseITreeMaker) fillPulseTree(runNumber, subrunNumber, eventNumber uint32,
	adcHits ADCHits, minibuffer int, label MinibufferLabel) error {

	inSpill := label == MinibufferBeam

	keys := maps.Keys(adcHits)
	slices.SortFunc(keys, func(a, b ChannelKey) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		default:
			return 0
		}
	})

	for _, key := range keys {
		if key.Detector != SubdetectorADC {
			continue
		}
		for _, pulse := range pulsesInMinibuffer(adcHits, key, minibuffer) {
			t.writer.Pulse = PulseRecord{
				RunNumber:        runNumber,
				SubrunNumber:     subrunNumber,
				EventNumber:      eventNumber,
				MinibufferNumber: uint32(minibuffer),
				StartTimeNS:      pulse.StartTime,
				Amplitude:        pulse.Amplitude,
				Charge:           pulse.Charge,
				RawAmplitude:     pulse.RawAmplitude,
				PMTID:            int32(key.ID),
				SpillNumber:      t.spillNumber,
				InSpill:          inSpill,
			}
			if err := t.writer.FillPulse(); err != nil {
				return err
			}
			if t.summary != nil {
				t.summary.WritePulse(PulseSummaryHDF5{
					evt_number:    int32(eventNumber),
					pmt_id:        int32(key.ID),
					start_time_ns: pulse.StartTime,
					charge:        pulse.Charge,
					amplitude:     pulse.Amplitude,
				})
			}
		}
	}
	return nil
}

func pulsesInMinibuffer(adcHits ADCHits, key ChannelKey, minibuffer int) []ADCPulse {
	pulsesByMinibuffer, ok := adcHits[key]
	if !ok {
		return nil
	}
	if minibuffer < 0 || minibuffer >= len(pulsesByMinibuffer) {
		return nil
	}
	return pulsesByMinibuffer[minibuffer]
}

package tools

// Default NCV deployment positions by run range. The table can be
// replaced from the run database (NCVPosition table).
var defaultNCVPositionRanges = []NCVPositionEntry{
	{Position: 1, MinRun: 650, MaxRun: 799},
	{Position: 2, MinRun: 800, MaxRun: 899},
	{Position: 3, MinRun: 900, MaxRun: 999},
	{Position: 4, MinRun: 1000, MaxRun: 1099},
	{Position: 5, MinRun: 1100, MaxRun: 1199},
	{Position: 6, MinRun: 1200, MaxRun: 1299},
	{Position: 7, MinRun: 1300, MaxRun: 1399},
	{Position: 8, MinRun: 1400, MaxRun: 1499},
}

// ncvPositionForRun returns the NCV position for a run, 0 when the run
// is outside every known range.
func ncvPositionForRun(runNumber uint32, ranges []NCVPositionEntry) int {
	for _, entry := range ranges {
		if int(runNumber) >= entry.MinRun && int(runNumber) <= entry.MaxRun {
			return entry.Position
		}
	}
	return 0
}

// beamFlags holds the four beam-quality cut results for one spill.
type beamFlags struct {
	potOK         bool
	hornCurrentOK bool
	timestampsOK  bool
	toroidsAgree  bool
}

func (f beamFlags) good() bool {
	return f.potOK && f.hornCurrentOK && f.timestampsOK && f.toroidsAgree
}

// beamQuality evaluates the beam-quality cuts against the configured
// windows. Toroid agreement is fractional, relative to the larger
// reading.
func beamQuality(beam BeamStatus, config Configuration) beamFlags {
	flags := beamFlags{
		potOK:         beam.POT >= config.MinPOT && beam.POT <= config.MaxPOT,
		hornCurrentOK: beam.HornCurrent >= config.MinHornCurrent && beam.HornCurrent <= config.MaxHornCurrent,
	}

	diff := beam.Timestamp - beam.RecordedTimestamp
	if diff < 0 {
		diff = -diff
	}
	flags.timestampsOK = diff <= config.TimestampTolerance

	larger := beam.Toroid875
	if beam.Toroid860 > larger {
		larger = beam.Toroid860
	}
	if larger <= 0 {
		flags.toroidsAgree = false
	} else {
		delta := beam.Toroid875 - beam.Toroid860
		if delta < 0 {
			delta = -delta
		}
		flags.toroidsAgree = delta/larger <= config.ToroidTolerance
	}
	return flags
}

// findCoincidentPulse returns the earliest pulse within tolerance ns
// of t, nil when no pulse matches.
func findCoincidentPulse(pulses []ADCPulse, t int64, tolerance int64) *ADCPulse {
	var match *ADCPulse
	for i := range pulses {
		dt := pulses[i].StartTime - t
		if dt < 0 {
			dt = -dt
		}
		if dt > tolerance {
			continue
		}
		if match == nil || pulses[i].StartTime < match.StartTime {
			match = &pulses[i]
		}
	}
	return match
}

// computeTankCharge integrates water-PMT pulse charge over the window
// [startTime, endTime) in one minibuffer and counts the unique water
// PMTs contributing. The NCV channels are not water PMTs.
func (t *PhaseITreeMaker) computeTankCharge(adcHits ADCHits, minibuffer int,
	startTime, endTime int64) (float64, int) {

	tankCharge := 0.
	uniquePMTs := make(map[uint32]struct{})

	for key, pulsesByMinibuffer := range adcHits {
		if key.Detector != SubdetectorADC {
			continue
		}
		if key.ID == t.ncvPMT1ID || key.ID == t.ncvPMT2ID {
			continue
		}
		if minibuffer < 0 || minibuffer >= len(pulsesByMinibuffer) {
			continue
		}
		for _, pulse := range pulsesByMinibuffer[minibuffer] {
			if pulse.StartTime < startTime || pulse.StartTime >= endTime {
				continue
			}
			tankCharge += pulse.Charge
			uniquePMTs[key.ID] = struct{}{}
		}
	}
	return tankCharge, len(uniquePMTs)
}

package tools

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildPhaseIEvent populates the ANNIEEvent store with a synthetic
// two-minibuffer event: a beam spill with one clean NCV coincidence
// followed by a source minibuffer with an unmatched NCV pulse.
func buildPhaseIEvent(data *DataModel) {
	store := data.Store(ANNIEEventStore)
	store.Clear()

	store.Set(KeyRunNumber, uint32(700))
	store.Set(KeySubrunNumber, uint32(3))
	store.Set(KeyEventNumber, uint32(42))
	store.Set(KeyMinibufferLabels, []MinibufferLabel{MinibufferBeam, MinibufferSource})
	store.Set(KeyHeftyInfo, HeftyInfo{Times: []int64{0, 80000}, Masks: []int32{2, 16}})
	store.Set(KeyBeamStatus, BeamStatus{
		POT:               6e11,
		HornCurrent:       174,
		Toroid875:         6e11,
		Toroid860:         5.9e11,
		Timestamp:         1000000,
		RecordedTimestamp: 1000100,
	})

	ncv1 := ChannelKey{Detector: SubdetectorADC, ID: 6}
	ncv2 := ChannelKey{Detector: SubdetectorADC, ID: 49}
	water1 := ChannelKey{Detector: SubdetectorADC, ID: 1}
	water2 := ChannelKey{Detector: SubdetectorADC, ID: 2}

	store.Set(KeyADCHits, ADCHits{
		ncv1: {
			{{StartTime: 1000, Amplitude: 0.05, Charge: 0.8, RawAmplitude: 120},
				{StartTime: 1500, Amplitude: 0.04, Charge: 0.6, RawAmplitude: 100}},
			{{StartTime: 2000, Amplitude: 0.03, Charge: 0.4, RawAmplitude: 80}},
		},
		ncv2: {
			{{StartTime: 1010, Amplitude: 0.04, Charge: 0.7, RawAmplitude: 110},
				{StartTime: 1510, Amplitude: 0.03, Charge: 0.5, RawAmplitude: 90}},
			nil,
		},
		water1: {
			{{StartTime: 1005, Charge: 0.5}},
			nil,
		},
		water2: {
			{{StartTime: 1040, Charge: 2.0}}, // just outside the 40 ns window
			nil,
		},
	})
}

func newTestTreeMaker(t *testing.T) *PhaseITreeMaker {
	t.Helper()
	config := testConfiguration()
	config.FileOut = filepath.Join(t.TempDir(), "out.root")
	setConfiguration(t, config)

	maker := NewPhaseITreeMaker(nil)
	require.NoError(t, maker.Initialise(config, NewDataModel()))
	return maker
}

func TestPhaseITreeMakerExecute(t *testing.T) {
	maker := newTestTreeMaker(t)

	data := NewDataModel()
	buildPhaseIEvent(data)
	require.NoError(t, maker.Execute(data))

	writer := maker.Writer()
	// two coincidences in the beam minibuffer, the unmatched source
	// pulse is not an NCV event
	require.Equal(t, 2, writer.EventsWritten)
	// every ADC pulse lands in the pulse tree
	require.Equal(t, 7, writer.PulsesWritten)

	// the last filled coincidence is the vetoed afterpulse
	require.Equal(t, uint32(700), writer.Event.RunNumber)
	require.Equal(t, int32(1), writer.Event.NCVPosition)
	require.True(t, writer.Event.HeftyMode)
	require.Equal(t, int32(2), writer.Event.HeftyMask)
	require.False(t, writer.Event.PassedAfterpulseCut)
	require.Equal(t, int64(500), writer.Event.TimeSinceLastEventNS)
	require.Equal(t, int64(1510), writer.Event.NCV2PulseTimeNS)
	require.True(t, writer.Event.PassedUniqueWaterPMTCut)
	require.True(t, writer.Event.PassedTankChargeCut)

	// beam bookkeeping goes to the right NCV position
	info := maker.PositionInfo()[1]
	require.NotNil(t, info)
	require.Equal(t, uint64(1), info.NumBeamSpills)
	require.Equal(t, uint64(1), info.NumSourceTriggers)
	require.InDelta(t, 6e11, info.TotalPOT, 1)

	require.NoError(t, maker.Finalise())
}

func TestPhaseITreeMakerTankChargeCut(t *testing.T) {
	maker := newTestTreeMaker(t)

	data := NewDataModel()
	buildPhaseIEvent(data)

	// pile enough charge into the window to fail the tank cuts
	store := data.Store(ANNIEEventStore)
	adcHits, err := GetFromStore[ADCHits](store, KeyADCHits)
	require.NoError(t, err)
	for id := uint32(10); id < 20; id++ {
		key := ChannelKey{Detector: SubdetectorADC, ID: id}
		adcHits[key] = [][]ADCPulse{
			{{StartTime: 1510, Charge: 1.0}},
			nil,
		}
	}

	require.NoError(t, maker.Execute(data))

	writer := maker.Writer()
	require.Equal(t, 2, writer.EventsWritten)
	require.False(t, writer.Event.PassedUniqueWaterPMTCut)
	require.False(t, writer.Event.PassedTankChargeCut)
	require.InDelta(t, 10.0, writer.Event.TankCharge, 1e-9)
	require.Equal(t, int32(10), writer.Event.UniqueHitWaterPMTs)

	require.NoError(t, maker.Finalise())
}

func TestPhaseITreeMakerMissingEntries(t *testing.T) {
	maker := newTestTreeMaker(t)

	data := NewDataModel()
	data.Store(ANNIEEventStore).Set(KeyRunNumber, uint32(700))

	require.Error(t, maker.Execute(data))
	require.NoError(t, maker.Finalise())
}

func TestPhaseITreeMakerBeamWithoutStatus(t *testing.T) {
	maker := newTestTreeMaker(t)

	data := NewDataModel()
	buildPhaseIEvent(data)
	data.Store(ANNIEEventStore).Delete(KeyBeamStatus)

	err := maker.Execute(data)
	require.Error(t, err)
	require.Contains(t, err.Error(), "beam minibuffer")
	require.NoError(t, maker.Finalise())
}

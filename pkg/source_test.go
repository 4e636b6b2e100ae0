package tools

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const eventDump = `{"run_number":700,"subrun_number":1,"event_number":10,"minibuffer_labels":["Beam","Source"],"hefty":{"times":[0,80000],"masks":[2,16]},"beam":{"pot":6e11,"horn_current":174},"pulses":[{"detector":"ADC","channel":6,"minibuffer":0,"start_time":1000,"charge":0.8},{"detector":"ADC","channel":49,"minibuffer":1,"start_time":1010,"charge":0.7},{"detector":"TDC","channel":3,"minibuffer":0,"start_time":500},{"detector":"ADC","channel":6,"minibuffer":5,"start_time":1,"charge":0.1}]}

{"run_number":700,"subrun_number":1,"event_number":11,"minibuffer_labels":["Soft"],"hefty":{},"pulses":[]}
{"run_number":700,"subrun_number":1,"event_number":12,"minibuffer_labels":["Beam"],"hefty":{},"pulses":[]}
`

func writeEventDump(t *testing.T, contents string) string {
	t.Helper()
	filename := filepath.Join(t.TempDir(), "events.jsonl")
	require.NoError(t, os.WriteFile(filename, []byte(contents), 0644))
	return filename
}

func TestCountEvents(t *testing.T) {
	filename := writeEventDump(t, eventDump)

	// blank lines do not count
	count, err := CountEvents(filename)
	require.NoError(t, err)
	require.Equal(t, 3, count)
}

func TestEventFileSourceNextEvent(t *testing.T) {
	filename := writeEventDump(t, eventDump)

	source, err := NewEventFileSource(filename)
	require.NoError(t, err)
	defer source.Close()

	data := NewDataModel()
	ok, err := source.NextEvent(data)
	require.NoError(t, err)
	require.True(t, ok)

	store := data.Store(ANNIEEventStore)
	run, err := GetFromStore[uint32](store, KeyRunNumber)
	require.NoError(t, err)
	require.Equal(t, uint32(700), run)

	event, err := GetFromStore[uint32](store, KeyEventNumber)
	require.NoError(t, err)
	require.Equal(t, uint32(10), event)

	labels, err := GetFromStore[[]MinibufferLabel](store, KeyMinibufferLabels)
	require.NoError(t, err)
	require.Equal(t, []MinibufferLabel{MinibufferBeam, MinibufferSource}, labels)

	hefty, err := GetFromStore[HeftyInfo](store, KeyHeftyInfo)
	require.NoError(t, err)
	require.True(t, hefty.Hefty())
	require.Equal(t, int64(80000), hefty.Offset(1))

	beam, err := GetFromStore[BeamStatus](store, KeyBeamStatus)
	require.NoError(t, err)
	require.InDelta(t, 6e11, beam.POT, 1)

	adcHits, err := GetFromStore[ADCHits](store, KeyADCHits)
	require.NoError(t, err)
	ncv1 := adcHits[ChannelKey{Detector: SubdetectorADC, ID: 6}]
	require.Len(t, ncv1, 2)
	require.Len(t, ncv1[0], 1) // the out-of-range minibuffer 5 pulse is dropped
	require.Equal(t, int64(1000), ncv1[0][0].StartTime)
	tdc := adcHits[ChannelKey{Detector: SubdetectorTDC, ID: 3}]
	require.Len(t, tdc[0], 1)

	// second event has no beam entry and clears the previous one
	ok, err = source.NextEvent(data)
	require.NoError(t, err)
	require.True(t, ok)
	_, err = GetFromStore[BeamStatus](store, KeyBeamStatus)
	require.Error(t, err)

	ok, err = source.NextEvent(data)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = source.NextEvent(data)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestEventFileSourceSkipAndMaxEvents(t *testing.T) {
	filename := writeEventDump(t, eventDump)

	config := testConfiguration()
	config.Skip = 1
	config.MaxEvents = 3
	setConfiguration(t, config)

	source, err := NewEventFileSource(filename)
	require.NoError(t, err)
	defer source.Close()

	data := NewDataModel()
	ok, err := source.NextEvent(data)
	require.NoError(t, err)
	require.True(t, ok)

	event, err := GetFromStore[uint32](data.Store(ANNIEEventStore), KeyEventNumber)
	require.NoError(t, err)
	require.Equal(t, uint32(11), event)

	ok, err = source.NextEvent(data)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = source.NextEvent(data)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestEventFileSourceBadRecord(t *testing.T) {
	filename := writeEventDump(t, "{not json}\n")

	source, err := NewEventFileSource(filename)
	require.NoError(t, err)
	defer source.Close()

	_, err = source.NextEvent(NewDataModel())
	var badRecord *ErrBadRecord
	require.ErrorAs(t, err, &badRecord)
	require.Equal(t, 1, badRecord.Line)
}

func TestEventFileSourceMissingFile(t *testing.T) {
	_, err := NewEventFileSource(filepath.Join(t.TempDir(), "nope.jsonl"))
	var openErr *ErrOpenFile
	require.ErrorAs(t, err, &openErr)
}

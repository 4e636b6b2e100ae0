package tools

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
)

// PulseJSON is one pulse in the event dump produced by the upstream
// hit finder.
type PulseJSON struct {
	Detector   string `json:"detector"`
	Channel    uint32 `json:"channel"`
	Minibuffer int    `json:"minibuffer"`
	ADCPulse
}

// EventRecord is one line of the JSON-lines event dump.
type EventRecord struct {
	RunNumber        uint32      `json:"run_number"`
	SubrunNumber     uint32      `json:"subrun_number"`
	EventNumber      uint32      `json:"event_number"`
	MinibufferLabels []string    `json:"minibuffer_labels"`
	Hefty            HeftyInfo   `json:"hefty"`
	Beam             *BeamStatus `json:"beam,omitempty"`
	Pulses           []PulseJSON `json:"pulses"`
}

// EventFileSource feeds the ANNIEEvent store one event per call from a
// JSON-lines dump, honouring the skip and max-events settings.
type EventFileSource struct {
	File     *os.File
	Filename string
	scanner  *bufio.Scanner
	line     int

	EvtCount int
}

func NewEventFileSource(filename string) (*EventFileSource, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, &ErrOpenFile{Filename: filename, Err: err}
	}
	source := &EventFileSource{
		File:     file,
		Filename: filename,
		scanner:  bufio.NewScanner(file),
		EvtCount: -1,
	}
	source.scanner.Buffer(make([]byte, 0, 1024*1024), 64*1024*1024)
	return source, nil
}

// CountEvents counts the data lines without disturbing the read
// position.
func CountEvents(filename string) (int, error) {
	file, err := os.Open(filename)
	if err != nil {
		return 0, &ErrOpenFile{Filename: filename, Err: err}
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 1024*1024), 64*1024*1024)
	evtCount := 0
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		evtCount++
	}
	return evtCount, scanner.Err()
}

// NextEvent loads the next event into the ANNIEEvent store. It returns
// false when the file is exhausted or the max-events limit is reached.
func (s *EventFileSource) NextEvent(data *DataModel) (bool, error) {
	for {
		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return false, fmt.Errorf("error reading event: %w", err)
			}
			return false, nil
		}
		s.line++
		raw := s.scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		s.EvtCount++
		if s.EvtCount >= configuration.MaxEvents {
			if configuration.Verbosity > 0 {
				logger.Info("Max events reached", "source")
			}
			return false, nil
		}
		if s.EvtCount < configuration.Skip {
			if configuration.Verbosity > 1 {
				logger.Info(fmt.Sprintf("Skipping event %d", s.EvtCount), "source")
			}
			continue
		}

		var record EventRecord
		if err := json.Unmarshal(raw, &record); err != nil {
			return false, &ErrBadRecord{Filename: s.Filename, Line: s.line, Err: err}
		}
		s.publish(record, data)
		return true, nil
	}
}

func (s *EventFileSource) Close() error {
	return s.File.Close()
}

// publish maps the record onto the store entries the tools read.
func (s *EventFileSource) publish(record EventRecord, data *DataModel) {
	store := data.Store(ANNIEEventStore)
	store.Clear()

	labels := make([]MinibufferLabel, len(record.MinibufferLabels))
	for i, name := range record.MinibufferLabels {
		labels[i] = ParseMinibufferLabel(name)
	}

	adcHits := make(ADCHits)
	nMinibuffers := len(labels)
	for _, pulse := range record.Pulses {
		detector := SubdetectorADC
		if pulse.Detector == "TDC" {
			detector = SubdetectorTDC
		}
		key := ChannelKey{Detector: detector, ID: pulse.Channel}
		if _, ok := adcHits[key]; !ok {
			adcHits[key] = make([][]ADCPulse, nMinibuffers)
		}
		mb := pulse.Minibuffer
		if mb < 0 || mb >= nMinibuffers {
			continue
		}
		adcHits[key][mb] = append(adcHits[key][mb], pulse.ADCPulse)
	}

	store.Set(KeyRunNumber, record.RunNumber)
	store.Set(KeySubrunNumber, record.SubrunNumber)
	store.Set(KeyEventNumber, record.EventNumber)
	store.Set(KeyADCHits, adcHits)
	store.Set(KeyMinibufferLabels, labels)
	store.Set(KeyHeftyInfo, record.Hefty)
	if record.Beam != nil {
		store.Set(KeyBeamStatus, *record.Beam)
	}
}

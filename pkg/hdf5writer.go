package tools

import (
	"fmt"

	hdf5 "github.com/jmbenlloch/go-hdf5"
)

// SummaryWriter mirrors the ROOT output with flat HDF5 tables of the
// NCV events and the individual pulses, for analyses that read columnar
// data directly.
type SummaryWriter struct {
	File     *hdf5.File
	Filename string

	EventTable *hdf5.Dataset
	PulseTable *hdf5.Dataset

	EvtCounter   int
	PulseCounter int
}

func NewSummaryWriter(filename string) *SummaryWriter {
	writer := &SummaryWriter{}
	writer.File = openFile(filename)
	writer.Filename = filename
	group := createGroup(writer.File, "PhaseI")
	writer.EventTable = createTable(group, "events", EventSummaryHDF5{})
	writer.PulseTable = createTable(group, "pulses", PulseSummaryHDF5{})
	return writer
}

func (w *SummaryWriter) WriteEventSummary(event EventSummaryHDF5) {
	writeEntryToTable(w.EventTable, event, w.EvtCounter)
	w.EvtCounter++
}

func (w *SummaryWriter) WritePulse(pulse PulseSummaryHDF5) {
	writeEntryToTable(w.PulseTable, pulse, w.PulseCounter)
	w.PulseCounter++
}

func (w *SummaryWriter) Close() error {
	var errs []error

	if err := w.EventTable.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing event table: %w", err))
	}
	if err := w.PulseTable.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing pulse table: %w", err))
	}
	if err := w.File.Close(); err != nil {
		errs = append(errs, fmt.Errorf("error closing file %q: %w", w.Filename, err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing summary writer: %v", errs)
	}
	return nil
}

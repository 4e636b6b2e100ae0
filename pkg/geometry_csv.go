package tools

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Geometry files are comma-separated with a small framing convention:
// lines starting with '#' are comments, the line after LEGEND_LINE is
// the comma-separated column legend, and data lines live between
// DATA_START and DATA_END.
const (
	LegendLineLabel    = "LEGEND_LINE"
	DataStartLineLabel = "DATA_START"
	DataEndLineLabel   = "DATA_END"
)

// Column kinds for the FACC/MRD channel file. Any legend entry not
// listed here is ignored, so extra columns in newer files are harmless.
var (
	mrdIntegerColumns = []string{
		"detector_num", "channel_num", "detector_system", "orientation",
		"layer", "side", "num", "rack", "TDC_slot", "TDC_channel",
		"discrim_slot", "discrim_ch", "patch_panel_row", "patch_panel_col",
		"amp_slot", "amp_channel", "hv_crate", "hv_slot", "hv_channel",
		"nominal_HV", "polarity",
	}
	mrdDoubleColumns = []string{
		"x_center", "y_center", "z_center", "x_width", "y_width", "z_width",
	}
	mrdStringColumns = []string{
		"PMT_type", "cable_label", "paddle_label",
	}
)

func fileExists(name string) bool {
	info, err := os.Stat(name)
	return err == nil && !info.IsDir()
}

// getLegendLine returns the legend entries of a geometry file: the
// comma-separated line right after the LEGEND_LINE marker.
func getLegendLine(filename string) ([]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, &ErrOpenFile{Filename: filename, Err: err}
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "#") {
			continue
		}
		if strings.Contains(line, LegendLineLabel) {
			// Next line is the title line
			if !scanner.Scan() {
				break
			}
			return splitRecord(scanner.Text()), nil
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &ErrOpenFile{Filename: filename, Err: err}
	}
	return nil, &ErrLegendNotFound{Filename: filename}
}

// forEachDataLine walks the records between DATA_START and DATA_END,
// calling fn with the split fields of each line.
func forEachDataLine(filename string, fn func(lineNum int, fields []string) error) error {
	file, err := os.Open(filename)
	if err != nil {
		return &ErrOpenFile{Filename: filename, Err: err}
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0
	inData := false
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "#") || line == "" {
			continue
		}
		if !inData {
			if strings.Contains(line, DataStartLineLabel) {
				inData = true
			}
			continue
		}
		if strings.Contains(line, DataEndLineLabel) {
			return nil
		}
		if err := fn(lineNum, splitRecord(line)); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return &ErrOpenFile{Filename: filename, Err: err}
	}
	if !inData {
		return &ErrBadRecord{Filename: filename, Line: lineNum,
			Err: fmt.Errorf("no %s marker found", DataStartLineLabel)}
	}
	return nil
}

func splitRecord(line string) []string {
	fields := strings.Split(line, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}

// record maps legend entries to the typed values of one data line.
type record struct {
	ints    map[string]int
	doubles map[string]float64
	strings map[string]string
}

// parseRecord types each field according to the column-kind tables.
// Short lines are an error; unknown legend columns are skipped.
func parseRecord(legend, fields []string, intCols, doubleCols, stringCols []string) (record, error) {
	if len(fields) < len(legend) {
		return record{}, fmt.Errorf("expected %d fields, got %d", len(legend), len(fields))
	}
	rec := record{
		ints:    make(map[string]int),
		doubles: make(map[string]float64),
		strings: make(map[string]string),
	}
	for i, name := range legend {
		field := fields[i]
		switch {
		case contains(intCols, name):
			value, err := strconv.Atoi(field)
			if err != nil {
				return record{}, fmt.Errorf("column %q: %w", name, err)
			}
			rec.ints[name] = value
		case contains(doubleCols, name):
			value, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return record{}, fmt.Errorf("column %q: %w", name, err)
			}
			rec.doubles[name] = value
		case contains(stringCols, name):
			rec.strings[name] = field
		}
	}
	return rec, nil
}

func contains(list []string, name string) bool {
	for _, entry := range list {
		if entry == name {
			return true
		}
	}
	return false
}

// parseDetectorSummary reads the single-record detector summary file
// into the geometry scalars.
func parseDetectorSummary(filename string) (GeometrySummary, error) {
	legend, err := getLegendLine(filename)
	if err != nil {
		return GeometrySummary{}, err
	}

	intCols := []string{"geometry_version"}
	doubleCols := []string{
		"tank_xcenter", "tank_ycenter", "tank_zcenter",
		"tank_radius", "tank_halfheight",
		"pmt_enclosed_radius", "pmt_enclosed_halfheight",
		"mrd_width", "mrd_height", "mrd_depth", "mrd_start",
	}

	var summary GeometrySummary
	found := false
	err = forEachDataLine(filename, func(lineNum int, fields []string) error {
		rec, err := parseRecord(legend, fields, intCols, doubleCols, nil)
		if err != nil {
			return &ErrBadRecord{Filename: filename, Line: lineNum, Err: err}
		}
		summary = GeometrySummary{
			Version: rec.ints["geometry_version"],
			TankCenter: Position{
				X: rec.doubles["tank_xcenter"],
				Y: rec.doubles["tank_ycenter"],
				Z: rec.doubles["tank_zcenter"],
			},
			TankRadius:            rec.doubles["tank_radius"],
			TankHalfHeight:        rec.doubles["tank_halfheight"],
			PMTEnclosedRadius:     rec.doubles["pmt_enclosed_radius"],
			PMTEnclosedHalfHeight: rec.doubles["pmt_enclosed_halfheight"],
			MRDWidth:              rec.doubles["mrd_width"],
			MRDHeight:             rec.doubles["mrd_height"],
			MRDDepth:              rec.doubles["mrd_depth"],
			MRDStart:              rec.doubles["mrd_start"],
		}
		found = true
		return nil
	})
	if err != nil {
		return GeometrySummary{}, err
	}
	if !found {
		return GeometrySummary{}, &ErrBadRecord{Filename: filename, Line: 0,
			Err: fmt.Errorf("detector summary has no data line")}
	}
	return summary, nil
}

// parseMRDDataEntry builds a Detector with its single TDC channel from
// one FACC/MRD data line. Channel file positions are in cm.
func parseMRDDataEntry(legend, fields []string) (*Detector, error) {
	rec, err := parseRecord(legend, fields, mrdIntegerColumns, mrdDoubleColumns, mrdStringColumns)
	if err != nil {
		return nil, err
	}

	det := NewDetector(
		rec.ints["detector_num"],
		"MRD",
		rec.strings["PMT_type"],
		Position{
			X: rec.doubles["x_center"] / 100.,
			Y: rec.doubles["y_center"] / 100.,
			Z: rec.doubles["z_center"] / 100.,
		},
		Direction{},
		DetectorOn,
	)
	det.AddChannel(Channel{
		Num:        rec.ints["channel_num"],
		Rack:       rec.ints["rack"],
		TDCSlot:    rec.ints["TDC_slot"],
		TDCChannel: rec.ints["TDC_channel"],
		HVCrate:    rec.ints["hv_crate"],
		HVSlot:     rec.ints["hv_slot"],
		HVChannel:  rec.ints["hv_channel"],
		Status:     ChannelOn,
	})
	return det, nil
}

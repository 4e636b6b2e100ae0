package tools

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const detectorSummaryFile = `# ANNIE detector summary
# units in meters
LEGEND_LINE
geometry_version,tank_xcenter,tank_ycenter,tank_zcenter,tank_radius,tank_halfheight,pmt_enclosed_radius,pmt_enclosed_halfheight,mrd_width,mrd_height,mrd_depth,mrd_start
DATA_START
2,0.0,0.1,1.7,1.52,1.98,1.0,1.5,3.05,2.74,1.4,3.3
DATA_END
`

const mrdChannelFile = `# FACC/MRD channel map
# positions in cm
LEGEND_LINE
detector_num,channel_num,detector_system,orientation,layer,side,num,rack,TDC_slot,TDC_channel,hv_crate,hv_slot,hv_channel,x_center,y_center,z_center,PMT_type
DATA_START
26,0,1,0,1,0,0,7,7,0,1,20,0,15.0,130.0,420.0,EMI9954KB
27,1,1,0,1,0,1,7,7,1,1,20,1,15.0,100.0,420.0,EMI9954KB
DATA_END
`

func writeGeometryFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseDetectorSummary(t *testing.T) {
	path := writeGeometryFile(t, "detector.csv", detectorSummaryFile)

	summary, err := parseDetectorSummary(path)
	require.NoError(t, err)
	require.Equal(t, 2, summary.Version)
	require.Equal(t, Position{X: 0.0, Y: 0.1, Z: 1.7}, summary.TankCenter)
	require.Equal(t, 1.52, summary.TankRadius)
	require.Equal(t, 1.98, summary.TankHalfHeight)
	require.Equal(t, 3.05, summary.MRDWidth)
	require.Equal(t, 3.3, summary.MRDStart)
}

func TestGetLegendLineMissing(t *testing.T) {
	path := writeGeometryFile(t, "nolegend.csv", "# just a comment\n1,2,3\n")

	_, err := getLegendLine(path)
	var legendErr *ErrLegendNotFound
	require.True(t, errors.As(err, &legendErr))
}

func TestForEachDataLineMissingMarker(t *testing.T) {
	path := writeGeometryFile(t, "nomarker.csv", "LEGEND_LINE\na,b\n1,2\n")

	err := forEachDataLine(path, func(lineNum int, fields []string) error { return nil })
	var recordErr *ErrBadRecord
	require.True(t, errors.As(err, &recordErr))
}

func TestParseMRDDataEntry(t *testing.T) {
	legend, err := getLegendLine(writeGeometryFile(t, "mrd.csv", mrdChannelFile))
	require.NoError(t, err)

	fields := splitRecord("26,0,1,0,1,0,0,7,7,0,1,20,0,15.0,130.0,420.0,EMI9954KB")
	det, err := parseMRDDataEntry(legend, fields)
	require.NoError(t, err)

	require.Equal(t, 26, det.Num)
	require.Equal(t, "MRD", det.System)
	require.Equal(t, "EMI9954KB", det.Type)
	// positions converted from cm to meters
	require.InDelta(t, 0.15, det.Pos.X, 1e-9)
	require.InDelta(t, 1.30, det.Pos.Y, 1e-9)
	require.InDelta(t, 4.20, det.Pos.Z, 1e-9)

	ch, ok := det.Channels[0]
	require.True(t, ok)
	require.Equal(t, 7, ch.Rack)
	require.Equal(t, 7, ch.TDCSlot)
	require.Equal(t, 0, ch.TDCChannel)
	require.Equal(t, 1, ch.HVCrate)
	require.Equal(t, 20, ch.HVSlot)
	require.Equal(t, ChannelOn, ch.Status)
}

func TestParseMRDDataEntryBadField(t *testing.T) {
	legend := []string{"detector_num", "channel_num"}
	_, err := parseMRDDataEntry(legend, []string{"26", "not-a-number"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "channel_num")
}

func TestParseRecordShortLine(t *testing.T) {
	legend := []string{"detector_num", "channel_num", "rack"}
	_, err := parseRecord(legend, []string{"26"}, mrdIntegerColumns, nil, nil)
	require.Error(t, err)
}

func TestLoadGeometryInitialise(t *testing.T) {
	config := testConfiguration()
	config.DetectorGeoFile = writeGeometryFile(t, "detector.csv", detectorSummaryFile)
	config.FACCMRDGeoFile = writeGeometryFile(t, "mrd.csv", mrdChannelFile)
	setConfiguration(t, config)

	tool := NewLoadGeometry(nil)
	data := NewDataModel()
	require.NoError(t, tool.Initialise(config, data))
	require.NoError(t, tool.Execute(data))
	require.NoError(t, tool.Finalise())

	geo, err := GetFromStore[*Geometry](data.Store(ANNIEEventStore).Header(), KeyGeometry)
	require.NoError(t, err)
	require.Equal(t, 2, geo.Version)
	require.Equal(t, 2, geo.NumDetectors())
	require.Equal(t, 2, geo.NumChannels())

	det, ok := geo.Detector(27)
	require.True(t, ok)
	require.InDelta(t, 1.0, det.Pos.Y, 1e-9)

	// RecoEvent store is created for the downstream tools
	_, ok = data.Stores[RecoEventStore]
	require.True(t, ok)
}

func TestLoadGeometryMissingFile(t *testing.T) {
	config := testConfiguration()
	config.DetectorGeoFile = filepath.Join(t.TempDir(), "missing.csv")
	config.FACCMRDGeoFile = config.DetectorGeoFile

	tool := NewLoadGeometry(nil)
	err := tool.Initialise(config, NewDataModel())
	var openErr *ErrOpenFile
	require.True(t, errors.As(err, &openErr))
}

package tools

import (
	"fmt"

	sqlx "github.com/jmoiron/sqlx"
)

// LoadGeometry parses the detector-description files into a Geometry
// and publishes it on the ANNIEEvent store header for the downstream
// reconstruction tools.
type LoadGeometry struct {
	verbosity int

	detectorGeoFile string
	faccMRDGeoFile  string

	dbConn *sqlx.DB

	geometry *Geometry
}

func NewLoadGeometry(dbConn *sqlx.DB) *LoadGeometry {
	return &LoadGeometry{dbConn: dbConn}
}

func (t *LoadGeometry) Name() string { return "LoadGeometry" }

func (t *LoadGeometry) Initialise(config Configuration, data *DataModel) error {
	t.verbosity = config.Verbosity
	t.detectorGeoFile = config.DetectorGeoFile
	t.faccMRDGeoFile = config.FACCMRDGeoFile

	// Make the RecoEvent store if it doesn't exist
	data.Store(RecoEventStore)

	if !fileExists(t.detectorGeoFile) {
		return &ErrOpenFile{Filename: t.detectorGeoFile, Err: fmt.Errorf("file does not exist")}
	}
	if !fileExists(t.faccMRDGeoFile) {
		return &ErrOpenFile{Filename: t.faccMRDGeoFile, Err: fmt.Errorf("file does not exist")}
	}

	if err := t.initializeGeometry(); err != nil {
		return err
	}
	if err := t.loadFACCMRDDetectors(); err != nil {
		return err
	}

	if !configuration.NoDB && t.dbConn != nil {
		runNumber, err := GetFromStore[uint32](data.Store(ANNIEEventStore), KeyRunNumber)
		if err == nil {
			if overlayErr := t.overlayChannelMapping(int(runNumber)); overlayErr != nil {
				return overlayErr
			}
		}
	}

	data.Store(ANNIEEventStore).Header().Set(KeyGeometry, t.geometry)
	if t.verbosity > 0 {
		message := fmt.Sprintf("Loaded geometry version %d with %d detectors, %d channels",
			t.geometry.Version, t.geometry.NumDetectors(), t.geometry.NumChannels())
		logger.Info(message, "LoadGeometry")
	}
	return nil
}

func (t *LoadGeometry) Execute(data *DataModel) error {
	return nil
}

func (t *LoadGeometry) Finalise() error {
	if t.verbosity > 0 {
		logger.Info("LoadGeometry tool exiting", "LoadGeometry")
	}
	return nil
}

// Geometry returns the loaded geometry, nil before Initialise.
func (t *LoadGeometry) Geometry() *Geometry {
	return t.geometry
}

func (t *LoadGeometry) initializeGeometry() error {
	summary, err := parseDetectorSummary(t.detectorGeoFile)
	if err != nil {
		return err
	}
	t.geometry = NewGeometry(summary, GeometryFullyOperational)
	return nil
}

func (t *LoadGeometry) loadFACCMRDDetectors() error {
	legend, err := getLegendLine(t.faccMRDGeoFile)
	if err != nil {
		return err
	}

	return forEachDataLine(t.faccMRDGeoFile, func(lineNum int, fields []string) error {
		det, err := parseMRDDataEntry(legend, fields)
		if err != nil {
			return &ErrBadRecord{Filename: t.faccMRDGeoFile, Line: lineNum, Err: err}
		}
		if t.verbosity > 3 {
			message := fmt.Sprintf("Adding detector %d with %d channels", det.Num, len(det.Channels))
			logger.Info(message, "LoadGeometry")
		}
		t.geometry.AddDetector(det)
		return nil
	})
}

// overlayChannelMapping applies the run-conditions electronics routing
// on top of the CSV-loaded channels.
func (t *LoadGeometry) overlayChannelMapping(runNumber int) error {
	mapping, err := getChannelMappingFromDB(t.dbConn, runNumber)
	if err != nil {
		errMessage := fmt.Errorf("error getting channel mapping from database: %w", err)
		logger.Error(errMessage.Error())
		return errMessage
	}

	for elecID, entry := range mapping {
		det, ok := t.geometry.Detector(entry.DetectorNum)
		if !ok {
			continue
		}
		ch, ok := det.Channels[entry.ChannelNum]
		if !ok {
			continue
		}
		ch.TDCChannel = elecID
		det.Channels[entry.ChannelNum] = ch
	}
	return nil
}

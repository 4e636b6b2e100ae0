package tools

// Configuration for a full tool-chain run. One JSON file configures the
// runner and every tool; defaults are set before unmarshalling so a
// partial file is enough.
type Configuration struct {
	MaxEvents int    `json:"max_events"`
	Skip      int    `json:"skip"`
	Verbosity int    `json:"verbosity"`
	EventFile string `json:"event_file"`
	FileOut   string `json:"file_out"`
	Discard   bool   `json:"discard"`

	// LoadGeometry
	DetectorGeoFile string `json:"detector_geo_file"`
	FACCMRDGeoFile  string `json:"faccmrd_geo_file"`

	// Run conditions database
	NoDB   bool   `json:"no_db"`
	Host   string `json:"host"`
	User   string `json:"user"`
	Passwd string `json:"pass"`
	DBName string `json:"dbname"`

	// PhaseITreeMaker cuts
	AfterpulsingVetoTime    int64   `json:"afterpulsing_veto_time"`    // ns
	TankChargeWindowLength  int64   `json:"tank_charge_window_length"` // ns
	MaxUniqueWaterPMTs      int     `json:"max_unique_water_pmts"`
	MaxTankCharge           float64 `json:"max_tank_charge"`           // nC
	NCVCoincidenceTolerance int64   `json:"ncv_coincidence_tolerance"` // ns
	NCVPmt1ID               uint32  `json:"ncv_pmt1_id"`
	NCVPmt2ID               uint32  `json:"ncv_pmt2_id"`

	// Beam quality windows
	MinPOT             float64 `json:"min_pot"`
	MaxPOT             float64 `json:"max_pot"`
	MinHornCurrent     float64 `json:"min_horn_current"`    // kA
	MaxHornCurrent     float64 `json:"max_horn_current"`    // kA
	ToroidTolerance    float64 `json:"toroid_tolerance"`    // fractional
	TimestampTolerance int64   `json:"timestamp_tolerance"` // ms

	// Optional outputs
	WritePlots bool   `json:"write_plots"`
	PlotsDir   string `json:"plots_dir"`
	WriteHDF5  bool   `json:"write_hdf5"`
	HDF5File   string `json:"hdf5_file"`

	CompressionLevel int `json:"compression_level"`
}

var configuration Configuration

func GetConfiguration() Configuration {
	return configuration
}

func SetConfiguration(config Configuration) {
	configuration = config
}

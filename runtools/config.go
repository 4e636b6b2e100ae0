package main

import (
	"encoding/json"
	"fmt"
	"os"

	tools "github.com/annie-exp/toolanalysis_go/pkg"
)

func LoadConfiguration(filename string) (tools.Configuration, error) {
	var config tools.Configuration

	// Set default values
	config.MaxEvents = 1000000000
	config.Skip = 0
	config.Verbosity = 0
	config.Discard = true
	config.FileOut = "phase_i_tree.root"

	config.NoDB = false
	config.Host = "anniedb.fnal.gov"
	config.User = "anniereader"
	config.Passwd = "readonly"
	config.DBName = "ANNIEPhaseI"

	config.AfterpulsingVetoTime = 10000
	config.TankChargeWindowLength = 40
	config.MaxUniqueWaterPMTs = 8
	config.MaxTankCharge = 3.0
	config.NCVCoincidenceTolerance = 40
	config.NCVPmt1ID = 6
	config.NCVPmt2ID = 49

	config.MinPOT = 5e11
	config.MaxPOT = 8e12
	config.MinHornCurrent = 172
	config.MaxHornCurrent = 176
	config.ToroidTolerance = 0.1
	config.TimestampTolerance = 1000

	config.WritePlots = false
	config.PlotsDir = "."
	config.WriteHDF5 = false
	config.HDF5File = "phase_i_summary.h5"
	config.CompressionLevel = 4

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, err
	}
	err = json.Unmarshal(data, &config)
	if err != nil {
		return config, err
	}
	return config, nil
}

func printConfiguration(config tools.Configuration, logger Logger) {
	logger.Info(fmt.Sprintf("Event file: %s", config.EventFile), "config")
	logger.Info(fmt.Sprintf("File out: %s", config.FileOut), "config")
	logger.Info(fmt.Sprintf("Detector geometry file: %s", config.DetectorGeoFile), "config")
	logger.Info(fmt.Sprintf("FACC/MRD geometry file: %s", config.FACCMRDGeoFile), "config")
	logger.Info(fmt.Sprintf("No DB: %t", config.NoDB), "config")
	logger.Info(fmt.Sprintf("Host: %s", config.Host), "config")
	logger.Info(fmt.Sprintf("DB name: %s", config.DBName), "config")
	logger.Info(fmt.Sprintf("Skip: %d", config.Skip), "config")
	logger.Info(fmt.Sprintf("Max events: %d", config.MaxEvents), "config")
	logger.Info(fmt.Sprintf("Verbosity: %d", config.Verbosity), "config")
	logger.Info(fmt.Sprintf("Discard: %t", config.Discard), "config")
	logger.Info(fmt.Sprintf("Afterpulsing veto time: %d ns", config.AfterpulsingVetoTime), "config")
	logger.Info(fmt.Sprintf("Tank charge window length: %d ns", config.TankChargeWindowLength), "config")
	logger.Info(fmt.Sprintf("Max unique water PMTs: %d", config.MaxUniqueWaterPMTs), "config")
	logger.Info(fmt.Sprintf("Max tank charge: %f nC", config.MaxTankCharge), "config")
	logger.Info(fmt.Sprintf("NCV coincidence tolerance: %d ns", config.NCVCoincidenceTolerance), "config")
	logger.Info(fmt.Sprintf("NCV PMT ids: %d, %d", config.NCVPmt1ID, config.NCVPmt2ID), "config")
	logger.Info(fmt.Sprintf("Write plots: %t", config.WritePlots), "config")
	logger.Info(fmt.Sprintf("Write HDF5: %t", config.WriteHDF5), "config")
}

package tools

import (
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	sqlx "github.com/jmoiron/sqlx" //make alias name the package to sqlx
)

func ConnectToDatabase(user string, pass string, host string, dbname string) (*sqlx.DB, error) {
	port := "3306"
	dbURI := fmt.Sprintf("%s:%s@(%s:%s)/%s?parseTime=true", user, pass, host, port, dbname)
	db, err := sqlx.Connect("mysql", dbURI)
	return db, err
}

// ChannelMappingEntry routes one electronics channel to its detector
// and channel number. Rows are valid for the run range [MinRun,MaxRun].
type ChannelMappingEntry struct {
	ElecID      int `db:"ElecID"`
	DetectorNum int `db:"DetectorNum"`
	ChannelNum  int `db:"ChannelNum"`
}

// getChannelMappingFromDB reads the electronics-to-detector routing
// valid for a run.
func getChannelMappingFromDB(db *sqlx.DB, runNumber int) (map[int]ChannelMappingEntry, error) {
	query := "SELECT ElecID, DetectorNum, ChannelNum FROM ChannelMapping WHERE MinRun <= %d and MaxRun >= %d ORDER BY ElecID"
	query = fmt.Sprintf(query, runNumber, runNumber)

	if configuration.Verbosity > 0 {
		logger.Info("Channel mapping read from DB", "database")
	}
	if configuration.Verbosity > 2 {
		message := fmt.Sprintf("Query: %s", query)
		logger.Info(message, "database")
	}

	rows, err := db.Queryx(query)
	if err != nil {
		errMessage := fmt.Errorf("error querying database: %w", err)
		return nil, errMessage
	}

	mapping := make(map[int]ChannelMappingEntry)
	for rows.Next() {
		result := ChannelMappingEntry{}
		err := rows.StructScan(&result)
		if err != nil {
			errMessage := fmt.Errorf("error scanning DB row: %w", err)
			return nil, errMessage
		}
		mapping[result.ElecID] = result
	}
	return mapping, nil
}

// NCVPositionEntry maps a run range to the NCV deployment position
// during that range.
type NCVPositionEntry struct {
	Position int `db:"Position"`
	MinRun   int `db:"MinRun"`
	MaxRun   int `db:"MaxRun"`
}

// getNCVPositionsFromDB reads the full NCV position table.
func getNCVPositionsFromDB(db *sqlx.DB) ([]NCVPositionEntry, error) {
	query := "SELECT Position, MinRun, MaxRun FROM NCVPosition ORDER BY MinRun"

	if configuration.Verbosity > 0 {
		logger.Info("NCV position table read from DB", "database")
	}

	rows, err := db.Queryx(query)
	if err != nil {
		errMessage := fmt.Errorf("error querying database: %w", err)
		return nil, errMessage
	}

	entries := make([]NCVPositionEntry, 0)
	for rows.Next() {
		result := NCVPositionEntry{}
		err := rows.StructScan(&result)
		if err != nil {
			errMessage := fmt.Errorf("error scanning DB row: %w", err)
			return nil, errMessage
		}
		entries = append(entries, result)
	}
	return entries, nil
}

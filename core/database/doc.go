// Package database handles database connections and schema inspection.
//
// It wraps GORM to open MySQL or SQLite databases from the application's
// configuration. The database transport stores collection records as rows of a
// single table through the connection returned here.
//
// # Connect
//
// Connect builds the dialector for the configured driver, applies connection
// pool limits and pings the database within the configured timeout.
//
// # Schema Inspection
//
// GetTableColumns lists the columns of a table (SHOW COLUMNS on MySQL, PRAGMA
// table_info on SQLite). The transport uses it to drop attributes that have no
// column before writing.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", zap.Error(err))
//	}
//
//	columns, err := database.GetTableColumns(db, "records")
package database

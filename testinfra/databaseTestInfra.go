package testinfra

import (
	"context"
	"os"
	"strings"
	"taskboard/persistence"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type TestDatabase struct {
	TestDatabaseName string
	DS               *persistence.DataSourceManager
}

// StartTestDatabase starts a throwaway database and activates it as persistence.ActiveDataSourceManager.
// A shared-cache in-memory sqlite database is used unless TEST_MYSQL_SERVICE (e.g. root:root@tcp(127.0.0.1:3306)) is set.
func StartTestDatabase(baseName string) *TestDatabase {
	databaseName := baseName + "_test_" + strings.ReplaceAll(uuid.New().String(), "-", "")

	var dbConfig *persistence.DatabaseConfig
	if mysqlSvc := os.Getenv("TEST_MYSQL_SERVICE"); mysqlSvc != "" {
		dbConfig = &persistence.DatabaseConfig{
			DriverType: persistence.DriverMysql,
			DriverArgs: mysqlSvc + "/" + databaseName + "?charset=utf8mb4&parseTime=True&loc=Local&timeout=5s",
		}
		if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
			logrus.Fatalf("failed to prepare database %v", err)
		}
	} else {
		dbConfig = &persistence.DatabaseConfig{
			DriverType: persistence.DriverSqlite3,
			DriverArgs: "file:" + databaseName + "?mode=memory&cache=shared",
		}
	}

	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		ds.Stop()
		logrus.Fatalf("database connection failed %v", err)
	}
	persistence.ActiveDataSourceManager = ds

	return &TestDatabase{TestDatabaseName: databaseName, DS: ds}
}

func StopTestDatabase(testDatabase *TestDatabase) {
	if testDatabase == nil || testDatabase.DS == nil {
		return
	}
	if testDatabase.DS.DatabaseConfig.DriverType == persistence.DriverMysql {
		if db := testDatabase.DS.GormDB(context.Background()); db != nil {
			if err := db.Exec("DROP DATABASE " + testDatabase.TestDatabaseName).Error; err != nil {
				logrus.Warn("failed to drop test database: " + testDatabase.TestDatabaseName)
			}
		}
	}
	// closing the last connection discards an in-memory database
	testDatabase.DS.Stop()
	if persistence.ActiveDataSourceManager == testDatabase.DS {
		persistence.ActiveDataSourceManager = nil
	}
}

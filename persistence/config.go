package persistence

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

const (
	DriverMysql    = "mysql"
	DriverPostgres = "postgres"
	DriverSqlite3  = "sqlite3"

	defaultMysqlArgs = "root:root@tcp(127.0.0.1:3306)/taskboard?charset=utf8mb4&parseTime=True&loc=Local&timeout=5s"
)

var ErrUnsupportedDriver = errors.New("unsupported database driver")

type DatabaseConfig struct {
	DriverType string
	DriverArgs string
}

// ParseDatabaseConfigFromEnv reads DATABASE_DRIVER (mysql by default) and DATABASE_URL.
func ParseDatabaseConfigFromEnv() (*DatabaseConfig, error) {
	driver := strings.ToLower(strings.TrimSpace(os.Getenv("DATABASE_DRIVER")))
	if driver == "" {
		driver = DriverMysql
	}
	args := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	return ParseDatabaseConfig(driver, args)
}

func ParseDatabaseConfig(driver, args string) (*DatabaseConfig, error) {
	switch driver {
	case DriverMysql:
		if args == "" {
			args = defaultMysqlArgs
		}
		dsn, err := mysqlDSN(args)
		if err != nil {
			return nil, err
		}
		return &DatabaseConfig{DriverType: driver, DriverArgs: dsn}, nil
	case DriverPostgres, DriverSqlite3:
		if args == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for driver %s", driver)
		}
		return &DatabaseConfig{DriverType: driver, DriverArgs: args}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDriver, driver)
	}
}

// mysqlDSN accepts both go-sql-driver DSNs and mysql:// URLs.
func mysqlDSN(args string) (string, error) {
	if !strings.HasPrefix(args, "mysql://") {
		cfg, err := mysql.ParseDSN(args)
		if err != nil {
			return "", err
		}
		cfg.ParseTime = true
		return cfg.FormatDSN(), nil
	}

	u, err := url.Parse(args)
	if err != nil {
		return "", err
	}
	cfg := mysql.NewConfig()
	cfg.User = u.User.Username()
	cfg.Passwd, _ = u.User.Password()
	cfg.Net = "tcp"
	cfg.Addr = u.Host
	cfg.DBName = strings.TrimPrefix(u.Path, "/")
	cfg.ParseTime = true
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	for k, v := range u.Query() {
		if len(v) > 0 && k != "schema" {
			cfg.Params[k] = v[0]
		}
	}
	return cfg.FormatDSN(), nil
}

// PrepareMysqlDatabase creates the database named in the DSN if it does not exist yet.
func PrepareMysqlDatabase(driverArgs string) error {
	cfg, err := mysql.ParseDSN(driverArgs)
	if err != nil {
		return err
	}
	dbName := cfg.DBName
	if dbName == "" {
		return errors.New("database name is missing")
	}
	cfg.DBName = ""

	db, err := gorm.Open(DriverMysql, cfg.FormatDSN())
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logrus.Warnf("failed to close bootstrap connection: %v", err)
		}
	}()

	return db.Exec("CREATE DATABASE IF NOT EXISTS `" + dbName + "` DEFAULT CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci").Error
}

package main

import (
	"net/http"
	"taskboard/account"
	"taskboard/bizerror"
	"taskboard/client/es"
	"taskboard/common"
	"taskboard/config"
	"taskboard/domain"
	"taskboard/domain/dashboard"
	"taskboard/domain/namespace"
	"taskboard/domain/task"
	"taskboard/domain/task/comment"
	"taskboard/indices"
	"taskboard/infra/tracing"
	"taskboard/persistence"
	"taskboard/servehttp"
	"taskboard/session"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

func main() {
	logrus.Info("service start")
	cfg := config.Load()

	closer, err := tracing.InitGlobalTracer(common.ServiceName)
	if err != nil {
		logrus.Fatalf("tracer initialization failed: %v", err)
	}
	defer closer.Close()

	dbConfig, err := persistence.ParseDatabaseConfigFromEnv()
	if err != nil {
		logrus.Fatalf("parse database config failed: %v", err)
	}
	// create database (no conflict)
	if dbConfig.DriverType == persistence.DriverMysql {
		if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
			logrus.Fatalf("failed to prepare database: %v", err)
		}
	}

	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		logrus.Fatalf("database connection failed: %v", err)
	}
	defer ds.Stop()
	persistence.ActiveDataSourceManager = ds

	if err := ds.Migrate(&account.User{}, &domain.Project{}, &domain.ProjectMember{}, &domain.Task{}, &domain.Comment{}); err != nil {
		logrus.Fatalf("database migration failed: %v", err)
	}
	if err := account.DefaultSecurityConfiguration(cfg.InitialAdminEmail, cfg.InitialAdminPassword); err != nil {
		logrus.Fatalf("failed to create initial administrator: %v", err)
	}

	session.ActiveTokenManager = session.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiresIn)
	if cfg.RedisURL != "" {
		store, err := session.NewRedisRevocationStore(cfg.RedisURL)
		if err != nil {
			logrus.Fatalf("redis connection failed: %v", err)
		}
		defer store.Close()
		session.ActiveRevocationStore = store
	}

	if _, err := es.CreateClient(cfg.ElasticsearchURL); err != nil {
		logrus.Fatalf("elasticsearch client creation failed: %v", err)
	}
	if es.Enabled() {
		logrus.Infof("task search index enabled at %s", cfg.ElasticsearchURL)
	}
	indices.LoadTasksFunc = task.LoadTaskDetails

	authLimiter := servehttp.NewRateLimiter(rate.Limit(cfg.RateLimitAuthRPS), cfg.RateLimitAuthBurst)
	stopCleanup := make(chan struct{})
	defer close(stopCleanup)
	go authLimiter.RunCleanup(5*time.Minute, stopCleanup)

	engine, err := servehttp.NewEngine(cfg.TrustedProxies)
	if err != nil {
		logrus.Fatalf("invalid trusted proxies %v: %v", cfg.TrustedProxies, err)
	}
	engine.Use(tracing.TracingIngress())
	engine.Use(bizerror.ErrorHandling())
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, common.ServiceName)
	})

	authFilter := session.AuthFilter()
	account.RegisterUsersRestAPI(engine, []gin.HandlerFunc{authFilter}, authLimiter.LimitMiddleware())
	namespace.RegisterProjectsRestApis(engine, authFilter)
	task.RegisterTasksRestApis(engine, authFilter)
	comment.RegisterCommentsRestApis(engine, authFilter)
	dashboard.RegisterDashboardRestApis(engine, authFilter)
	indices.RegisterIndicesRestAPI(engine, authFilter)

	if err := servehttp.StartHTTPServer(engine, cfg.Port); err != nil {
		logrus.Errorf("http server failed: %v", err)
	}
	logrus.Info("[QUIT] service exiting")
}

// Copyright 2020 The Moov Authors
// Use of this source code is governed by an Apache License
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"crypto/tls"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/moov-io/base/admin"
	"github.com/moov-io/base/http/bind"
	"github.com/moov-io/sepa"
	cfgadmin "github.com/moov-io/sepa/pkg/config/admin"
	"github.com/moov-io/sepa/pkg/database"
	"github.com/moov-io/sepa/pkg/messages"
	"github.com/moov-io/sepa/pkg/pipeline"
	"github.com/moov-io/sepa/pkg/util"
	"github.com/moov-io/sepa/x/route"
	"github.com/moov-io/sepa/x/trace"

	"github.com/gorilla/mux"
)

var (
	httpAddr  = flag.String("http.addr", bind.HTTP("sepa"), "HTTP listen address")
	adminAddr = flag.String("admin.addr", bind.Admin("sepa"), "Admin HTTP listen address")

	flagConfigFile = flag.String("config", "", "Filepath for config file to load")
)

func main() {
	flag.Parse()

	loadEnvFile(".env")

	cfg := readConfig(util.Or(os.Getenv("CONFIG_FILE"), *flagConfigFile))
	cfg.Logger.Log("startup", fmt.Sprintf("Starting sepa server version %s", sepa.Version))

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	_, traceCloser, err := trace.FromConfig(cfg.Logger, cfg.Tracing)
	if err != nil {
		panic(fmt.Sprintf("ERROR starting tracer: %v", err))
	}
	defer traceCloser.Close()

	// migrate database
	db, err := database.New(ctx, cfg.Logger, cfg.Database)
	if err != nil {
		panic(fmt.Sprintf("error creating database: %v", err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			cfg.Logger.Log("exit", err)
		}
	}()

	// Listen for application termination.
	errs := make(chan error)
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		errs <- fmt.Errorf("%s", <-c)
	}()

	// Spin up admin HTTP server and optionally override -admin.addr
	*adminAddr = util.Or(os.Getenv("HTTP_ADMIN_BIND_ADDRESS"), cfg.Admin.BindAddress, *adminAddr)
	adminServer := admin.NewServer(*adminAddr)
	adminServer.AddVersionHandler(sepa.Version) // Setup 'GET /version'
	adminServer.AddLivenessCheck("database", db.Ping)
	go func() {
		cfg.Logger.Log("admin", fmt.Sprintf("listening on %s", adminServer.BindAddr()))
		if err := adminServer.Listen(); err != nil {
			err = fmt.Errorf("problem starting admin http: %v", err)
			cfg.Logger.Log("admin", err)
			errs <- err
		}
	}()
	defer adminServer.Shutdown()

	cfgadmin.RegisterRoutes(adminServer, cfg)

	// Setup our delivery pipeline, the publisher must exist before any inmem subscription
	publisher, err := pipeline.NewPublisher(ctx, cfg.Pipeline)
	if err != nil {
		panic(fmt.Sprintf("ERROR creating pipeline publisher: %v", err))
	}
	defer publisher.Shutdown(context.Background())

	repo := messages.NewRepo(db)

	shutdownPipeline := setupPipeline(ctx, cfg, adminServer, repo)
	defer shutdownPipeline()

	// Create HTTP handler
	handler := mux.NewRouter()
	route.PingRoute(cfg.Logger, handler)

	messagesRouter := messages.NewRouter(cfg.Logger, cfg.SEPA, repo, publisher)
	messagesRouter.RegisterRoutes(handler)

	// Check to see if our -http.addr flag has been overridden
	*httpAddr = util.Or(os.Getenv("HTTP_BIND_ADDRESS"), cfg.Http.BindAddress, *httpAddr)

	// Create main HTTP server
	serve := &http.Server{
		Addr:    *httpAddr,
		Handler: handler,
		TLSConfig: &tls.Config{
			InsecureSkipVerify:       false,
			PreferServerCipherSuites: true,
			MinVersion:               tls.VersionTLS12,
		},
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	shutdownServer := func() {
		if err := serve.Shutdown(context.TODO()); err != nil {
			cfg.Logger.Log("shutdown", err)
		}
	}
	defer shutdownServer()

	// Start main HTTP server
	go func() {
		if certFile, keyFile := os.Getenv("HTTPS_CERT_FILE"), os.Getenv("HTTPS_KEY_FILE"); certFile != "" && keyFile != "" {
			cfg.Logger.Log("startup", fmt.Sprintf("binding to %s for secure HTTP server", *httpAddr))
			if err := serve.ListenAndServeTLS(certFile, keyFile); err != nil {
				cfg.Logger.Log("exit", err)
			}
		} else {
			cfg.Logger.Log("startup", fmt.Sprintf("binding to %s for HTTP server", *httpAddr))
			if err := serve.ListenAndServe(); err != nil {
				cfg.Logger.Log("exit", err)
			}
		}
	}()

	if err := <-errs; err != nil {
		cfg.Logger.Log("exit", err)
	}
}

package server

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/go-playground/validator"
	"github.com/gorilla/mux"
	"github.com/raksha-app/raksha/server/auth"
	"github.com/raksha-app/raksha/server/auth/key"
	"github.com/raksha-app/raksha/server/logger"
	"github.com/raksha-app/raksha/server/models"
	"github.com/raksha-app/raksha/server/sos"
	"github.com/raksha-app/raksha/server/uploads"
	"github.com/raksha-app/raksha/server/whatsapp"
	"github.com/raksha-app/raksha/server/work"
	"github.com/raksha-app/raksha/shared"
	"github.com/spf13/viper"
)

type RequestContextKey string

type DecodedJWT struct {
	Claims   *auth.RakshaTokenClaims
	ErrorMsg string
}

var (
	logg        = logger.NewLogger()
	validate    *validator.Validate
	authKeyPair *key.KeyPair
	appConfig   *shared.ServerConfig
	sosService  *sos.Service
	uploadStore *uploads.Store
)

// Start boots the raksha server: config, db, SOS service, background jobs
// & the http listener. Blocks until SIGINT/SIGTERM.
func Start(config *viper.Viper, devMode bool) {
	appConfig = loadAppConfig(config)

	var err error
	authKeyPair, err = key.NewKeyPairFromRSAPrivateKeyPem(appConfig.Raksha.PrivateKeyPem)
	fatalOnError(err)

	validate = validator.New()
	fatalOnError(RegisterValidators(validate))

	rootDir := configDirectory(devMode)
	fatalOnError(models.AutoMigrate(appConfig.Sqlite.PassPhrase, rootDir))

	uploadStore, err = uploads.NewStore(uploadsDirectory(rootDir))
	fatalOnError(err)

	sosService = sos.NewService(
		sos.ModelsUserFinder{},
		sos.NewDispatcher(whatsapp.NewClient(appConfig.WhatsApp), logg),
		sos.NewDiagnostics(),
		appConfig.WhatsApp,
		logg,
	)

	workerPool := work.NewWorkerAdapter(appConfig.Raksha.Cron.TimeZone)
	registerJobHandlers(workerPool, rootDir)
	enqueueJobs(workerPool)
	workerPool.Start()

	server := &http.Server{
		Addr:    fmt.Sprintf(":%v", appConfig.Raksha.Listener.Port),
		Handler: newRouter(),
	}
	go serve(server)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	cleanup(workerPool, server, rootDir)
}

func newRouter() *mux.Router {
	router := mux.NewRouter()
	router.Use(initialContextMiddleware, loggingMiddleware)

	router.HandleFunc("/health", healthCheck).Methods("GET")
	router.HandleFunc("/.well-known/jwks.json", jwksHandler).Methods("GET")
	router.HandleFunc("/users", createUser).Methods("POST")
	router.HandleFunc("/login", logIn).Methods("POST")
	router.HandleFunc("/reports", listLocationReports).Methods("GET")

	protected := router.NewRoute().Subrouter()
	protected.Use(protectedRouteMiddleware)
	protected.HandleFunc("/me", currentUser).Methods("GET")
	protected.HandleFunc("/sos", sendSOS).Methods("POST")
	protected.HandleFunc("/sos/preview", previewSOS).Methods("GET")
	protected.HandleFunc("/sos/diagnostics", sosDiagnostics).Methods("GET")
	protected.HandleFunc("/reports", createLocationReport).Methods("POST")

	return router
}

func loadAppConfig(config *viper.Viper) *shared.ServerConfig {
	serverConfig := &shared.ServerConfig{}

	fatalOnError(config.Unmarshal(serverConfig))
	fatalOnError(validator.New().Struct(serverConfig))

	return serverConfig
}

func uploadsDirectory(rootDir string) string {
	if appConfig.Uploads.Dir != "" {
		return appConfig.Uploads.Dir
	}

	return filepath.Join(rootDir, "uploads")
}

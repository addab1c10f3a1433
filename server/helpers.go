package server

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator"
	"github.com/raksha-app/raksha/server/auth"
	"github.com/raksha-app/raksha/server/models"
	"github.com/raksha-app/raksha/server/phone"
	"github.com/raksha-app/raksha/server/work"
	"github.com/raksha-app/raksha/utils"
)

// ---------------------------------------------------------------------------------//
// Handler Helper functions
// --------------------------------------------------------------------------------//

func writeJSON(rw http.ResponseWriter, statusCode int, payload interface{}) {
	rw.WriteHeader(statusCode)
	json.NewEncoder(rw).Encode(payload)
}

func writeError(rw http.ResponseWriter, statusCode int, errMsg string) {
	if statusCode >= http.StatusInternalServerError {
		logg.Error(errMsg)
	} else if statusCode >= http.StatusBadRequest {
		logg.Info(errMsg)
	}

	writeJSON(rw, statusCode, map[string]string{"error": errMsg})
}

func RegisterValidators(validate *validator.Validate) error {
	return validate.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		// reject whitespace in passwords
		err := validate.Var(fl.Field().String(), "contains= ")
		if err == nil {
			return false
		}
		return len(fl.Field().String()) > 0
	})
}

// parseOptionalFloat returns nil for empty or non-numeric form values.
func parseOptionalFloat(value string) *float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil
	}

	return &parsed
}

// normalizeUserNumbers rewrites every phone field on the user into
// canonical form, so stored values always match lookups.
func normalizeUserNumbers(user *models.User) {
	countryCode := appConfig.WhatsApp.DefaultCountryCode

	user.PhoneNumber = phone.Normalize(user.PhoneNumber, countryCode)
	user.FatherNumber = phone.Normalize(user.FatherNumber, countryCode)
	user.MotherNumber = phone.Normalize(user.MotherNumber, countryCode)
	user.GuardianNumber = phone.Normalize(user.GuardianNumber, countryCode)
	user.Guardian2Number = phone.Normalize(user.Guardian2Number, countryCode)
}

// ---------------------------------------------------------------------------------//
// Middleware Helper functions
// --------------------------------------------------------------------------------//

func decodeAndVerifyAuthHeader(authHeaderValue string) DecodedJWT {
	authHeaderList := strings.Split(authHeaderValue, "Bearer ")
	if len(authHeaderList) < 2 {
		return DecodedJWT{ErrorMsg: "no token provided"}
	}

	tokenClaims, err := auth.DecodeJWT(authHeaderList[1], authKeyPair)
	if err != nil {
		return DecodedJWT{ErrorMsg: "invalid token provided"}
	}

	// validate that the user account still exists
	_, err = models.FindUserBy("phone_number", tokenClaims.PhoneNumber)
	if err != nil {
		return DecodedJWT{ErrorMsg: "invalid token provided"}
	}

	return DecodedJWT{Claims: tokenClaims}
}

func requestClaims(r *http.Request) *auth.RakshaTokenClaims {
	decodedJWT, ok := r.Context().Value(RequestContextKey("decodedJWT")).(DecodedJWT)
	if !ok || decodedJWT.ErrorMsg != "" {
		return nil
	}

	return decodedJWT.Claims
}

// ---------------------------------------------------------------------------------//
// Server Helper functions
// --------------------------------------------------------------------------------//

func serve(server *http.Server) {
	logg.Infof("Raksha server is listening on %v", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Fatal(err)
	}
}

func cleanup(workerPool *work.WorkerPoolAdapter, server *http.Server, rootDir string) {
	// Stop background jobs before taking the listener down
	workerPool.Stop()

	// Best-effort final backup, so a shutdown never loses more than one
	// backup interval of data
	if sqliteBackupEnabled() {
		if err := backupSqliteDbHandler(rootDir)(nil); err != nil {
			logg.Errorf("final sqlite backup failed: %v", err)
		}
	}

	ctxShutDown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxShutDown); err != nil {
		logg.Fatalf("Raksha server shutdown failed:%+s", err)
	}

	logg.Infof("Raksha server stopped properly")
}

// configDirectory retrieves the directory holding the db & uploads,
// or logs an error message and exits if it's unable to.
func configDirectory(devMode bool) string {
	// Use 'raksha' folder in home directory for prod
	configFolderName := "raksha"
	rootDir, err := os.UserHomeDir()
	fatalOnError(err)

	// Use 'dev' folder in current directory for dev mode
	if devMode {
		configFolderName = "dev"
		rootDir, err = os.Getwd()
		fatalOnError(err)
	}

	configDir := filepath.Join(rootDir, configFolderName)

	err = utils.CreateDirIfNotExist(configDir)
	fatalOnError(err)

	return configDir
}

func fatalOnError(err error) {
	if err != nil {
		logg.Fatal(err)
	}
}

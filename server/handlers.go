package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/raksha-app/raksha/server/auth"
	"github.com/raksha-app/raksha/server/auth/key"
	"github.com/raksha-app/raksha/server/models"
	"github.com/raksha-app/raksha/server/phone"
	"github.com/raksha-app/raksha/server/sos"
	"github.com/raksha-app/raksha/server/uploads"
	"gorm.io/gorm"
)

const authTokenDuration = 24 * time.Hour

type sosRequestBody struct {
	Location *sos.RawLocation `json:"location"`
}

func createUser(rw http.ResponseWriter, r *http.Request) {
	data := models.User{}

	err := json.NewDecoder(r.Body).Decode(&data)
	if err != nil {
		writeError(rw, http.StatusBadRequest, err.Error())
		return
	}

	normalizeUserNumbers(&data)

	errs := validate.Struct(data)
	if errs != nil {
		writeJSON(rw, http.StatusBadRequest, map[string]interface{}{"errors": strings.Split(errs.Error(), "\n")})
		return
	}

	err = models.CreateUser(&data)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			writeError(rw, http.StatusBadRequest, "Phone number already registered")
			return
		}

		writeError(rw, http.StatusInternalServerError, err.Error())
		return
	}

	token, err := issueToken(&data)
	if err != nil {
		writeError(rw, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(rw, http.StatusCreated, map[string]interface{}{
		"message": "registration successful",
		"token":   token,
	})
}

func logIn(rw http.ResponseWriter, r *http.Request) {
	data := make(map[string]string)
	decoder := json.NewDecoder(r.Body)
	decoder.Decode(&data)

	number := phone.Normalize(data["number"], appConfig.WhatsApp.DefaultCountryCode)

	passwordHash, err := models.FindUserPassword(number)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		writeError(rw, http.StatusInternalServerError, err.Error())
		return
	}

	if !auth.CheckPasswordHash(data["password"], passwordHash) {
		writeError(rw, http.StatusUnauthorized, "Invalid number or password")
		return
	}

	user, err := models.FindUserBy("phone_number", number)
	if err != nil {
		writeError(rw, http.StatusInternalServerError, err.Error())
		return
	}

	token, err := issueToken(user)
	if err != nil {
		writeError(rw, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(rw, http.StatusOK, map[string]interface{}{"token": token, "user": user})
}

func currentUser(rw http.ResponseWriter, r *http.Request) {
	claims := requestClaims(r)

	user, err := models.FindUserBy("phone_number", claims.PhoneNumber)
	if err != nil {
		writeError(rw, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(rw, http.StatusOK, user)
}

// sendSOS runs one SOS pass for the logged-in user & maps each terminal
// state to its response shape.
func sendSOS(rw http.ResponseWriter, r *http.Request) {
	claims := requestClaims(r)

	body := sosRequestBody{}
	json.NewDecoder(r.Body).Decode(&body) // body is optional

	outcome, err := sosService.Trigger(r.Context(), claims.PhoneNumber, body.Location)
	if err != nil {
		writeSOSError(rw, err)
		return
	}

	writeSOSOutcome(rw, outcome)
}

// previewSOS renders the would-be payloads with a sample location, never
// contacting the provider.
func previewSOS(rw http.ResponseWriter, r *http.Request) {
	claims := requestClaims(r)

	outcome, err := sosService.Preview(r.Context(), claims.PhoneNumber)
	if err != nil {
		writeSOSError(rw, err)
		return
	}

	writeJSON(rw, http.StatusOK, outcome)
}

func sosDiagnostics(rw http.ResponseWriter, r *http.Request) {
	record := sosService.Diagnostics().Last()
	if record == nil {
		rw.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(rw, http.StatusOK, record)
}

func createLocationReport(rw http.ResponseWriter, r *http.Request) {
	err := r.ParseMultipartForm(uploads.MaxImageSize)
	if err != nil {
		writeError(rw, http.StatusBadRequest, err.Error())
		return
	}

	locationName := strings.TrimSpace(r.FormValue("location"))
	if locationName == "" {
		writeError(rw, http.StatusBadRequest, "Location name is required")
		return
	}

	report := models.LocationReport{
		LocationName: locationName,
		Surrounding:  r.FormValue("surrounding"),
		Description:  r.FormValue("description"),
	}

	if ratingStr := r.FormValue("rating"); ratingStr != "" {
		if rating, err := strconv.Atoi(ratingStr); err == nil {
			report.Rating = &rating
		}
	}

	report.Latitude = parseOptionalFloat(r.FormValue("latitude"))
	report.Longitude = parseOptionalFloat(r.FormValue("longitude"))

	if claims := requestClaims(r); claims != nil {
		if userID, err := strconv.ParseUint(claims.Subject, 10, 64); err == nil {
			id := uint(userID)
			report.CreatedByID = &id
		}
	}

	file, header, err := r.FormFile("area_img")
	if err == nil {
		defer file.Close()

		imagePath, err := uploadStore.SaveImage("area_img", file, header)
		if errors.Is(err, uploads.ErrNotAnImage) {
			writeError(rw, http.StatusBadRequest, err.Error())
			return
		}
		if err != nil {
			writeError(rw, http.StatusInternalServerError, err.Error())
			return
		}

		report.AreaImagePath = imagePath
	}

	if err := models.CreateLocationReport(&report); err != nil {
		writeError(rw, http.StatusInternalServerError, "Failed to save location")
		return
	}

	writeJSON(rw, http.StatusCreated, map[string]interface{}{
		"message": "report created",
		"report":  report,
	})
}

func listLocationReports(rw http.ResponseWriter, r *http.Request) {
	reports, err := models.AllLocationReports()
	if err != nil {
		writeError(rw, http.StatusInternalServerError, "Failed to load locations")
		return
	}

	writeJSON(rw, http.StatusOK, map[string]interface{}{"reports": reports})
}

func healthCheck(rw http.ResponseWriter, r *http.Request) {
	writeJSON(rw, http.StatusOK, map[string]string{"status": "ok"})
}

func jwksHandler(rw http.ResponseWriter, r *http.Request) {
	keyPairJWK, err := authKeyPair.JWK()
	if err != nil {
		writeError(rw, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(rw, http.StatusOK, key.ExportJWKAsJWKS(keyPairJWK))
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func issueToken(user *models.User) (string, error) {
	claims := auth.RakshaTokenClaims{
		Name:        user.Name,
		PhoneNumber: user.PhoneNumber,
		StandardClaims: jwt.StandardClaims{
			Subject:   fmt.Sprint(user.ID),
			IssuedAt:  time.Now().Unix(),
			ExpiresAt: time.Now().Add(authTokenDuration).Unix(),
		},
	}

	return auth.EncodeJWT(claims, authKeyPair)
}

func writeSOSError(rw http.ResponseWriter, err error) {
	var unexpected *sos.UnexpectedError

	switch {
	case errors.Is(err, sos.ErrUserNotFound):
		writeError(rw, http.StatusNotFound, "User not found. Make sure the registered phone number is correct.")
	case errors.Is(err, sos.ErrNoContacts):
		writeError(rw, http.StatusBadRequest, "No contact numbers available for this user")
	case errors.As(err, &unexpected):
		writeJSON(rw, http.StatusInternalServerError, map[string]interface{}{
			"error":   "Failed to send SOS",
			"details": unexpected.Record,
		})
	default:
		writeError(rw, http.StatusInternalServerError, "Failed to send SOS")
	}
}

func writeSOSOutcome(rw http.ResponseWriter, outcome *sos.Outcome) {
	if outcome.Simulated {
		writeJSON(rw, http.StatusOK, outcome)
		return
	}

	if outcome.Result.AllFailed() {
		writeJSON(rw, http.StatusInternalServerError, map[string]interface{}{
			"error":    "All sends failed",
			"failures": outcome.Result.Failures,
		})
		return
	}

	writeJSON(rw, http.StatusOK, map[string]interface{}{
		"message":   "SOS send completed",
		"successes": outcome.Result.Successes,
		"failures":  outcome.Result.Failures,
	})
}

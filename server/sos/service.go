package sos

import (
	"context"
	"errors"

	pkgerrors "github.com/pkg/errors"
	"github.com/raksha-app/raksha/server/models"
	"github.com/raksha-app/raksha/server/whatsapp"
	"github.com/raksha-app/raksha/shared"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrUserNotFound means the authenticated identity didn't match any user
// record.
var ErrUserNotFound = errors.New("user not found")

// UnexpectedError wraps a failure outside the per-recipient loop (storage,
// connectivity). The diagnostic record it carries is what the caller gets
// back as detail.
type UnexpectedError struct {
	Record *DiagnosticRecord
	Err    error
}

func (e *UnexpectedError) Error() string {
	return e.Err.Error()
}

func (e *UnexpectedError) Unwrap() error {
	return e.Err
}

// UserFinder is the slice of the storage layer the SOS service consumes.
type UserFinder interface {
	FindUserBy(field string, value interface{}) (*models.User, error)
}

// ModelsUserFinder adapts the models package helpers to UserFinder.
type ModelsUserFinder struct{}

func (ModelsUserFinder) FindUserBy(field string, value interface{}) (*models.User, error) {
	return models.FindUserBy(field, value)
}

// Outcome is the terminal state of a successful SOS pass: either a
// simulated send (payloads returned, no network call) or a dispatched one
// (per-recipient result attached).
type Outcome struct {
	Simulated bool                `json:"simulated,omitempty"`
	Contacts  []string            `json:"contacts"`
	Message   string              `json:"message"`
	Payloads  []*whatsapp.Message `json:"payloads,omitempty"`
	Result    *Result             `json:"-"`
}

// Service runs the SOS pass: resolve contacts, build payloads, then either
// simulate or dispatch. One pass per request, no state between requests
// besides the diagnostics register.
type Service struct {
	users       UserFinder
	dispatcher  *Dispatcher
	diagnostics *Diagnostics
	config      shared.WhatsAppConfig
	logg        *zap.SugaredLogger
}

func NewService(
	users UserFinder,
	dispatcher *Dispatcher,
	diagnostics *Diagnostics,
	config shared.WhatsAppConfig,
	logg *zap.SugaredLogger,
) *Service {
	return &Service{
		users:       users,
		dispatcher:  dispatcher,
		diagnostics: diagnostics,
		config:      config,
		logg:        logg,
	}
}

func (s *Service) Diagnostics() *Diagnostics {
	return s.diagnostics
}

// Trigger runs one SOS pass for the user identified by phoneNumber.
// Error taxonomy: ErrUserNotFound, ErrNoContacts, or *UnexpectedError;
// delivery failures are never returned as errors - they live inside
// Outcome.Result.
func (s *Service) Trigger(ctx context.Context, phoneNumber string, rawLoc *RawLocation) (*Outcome, error) {
	user, err := s.resolveUser(phoneNumber)
	if err != nil {
		return nil, err
	}

	loc := ParseLocation(rawLoc)

	outbounds, err := BuildPayloads(user, loc, s.config.DefaultCountryCode)
	if err != nil {
		return nil, err
	}

	message := AlertMessage(user, loc)
	contacts := contactNumbers(outbounds)

	if SimulationMode(s.config) {
		s.logg.Warn("whatsapp token or phone-number id not configured; simulating SOS send")
		return &Outcome{
			Simulated: true,
			Contacts:  contacts,
			Message:   message,
			Payloads:  messagesOf(outbounds),
		}, nil
	}

	result := s.dispatcher.Dispatch(ctx, outbounds)
	return &Outcome{Contacts: contacts, Message: message, Result: &result}, nil
}

// Preview renders what an SOS with a sample location would send, without
// ever contacting the provider.
func (s *Service) Preview(ctx context.Context, phoneNumber string) (*Outcome, error) {
	user, err := s.resolveUser(phoneNumber)
	if err != nil {
		return nil, err
	}

	contacts := ContactSet(user, s.config.DefaultCountryCode)
	if len(contacts) == 0 {
		return nil, ErrNoContacts
	}

	sampleLoc := &Location{Latitude: 12.9716, Longitude: 77.5946}
	message := AlertMessage(user, sampleLoc)

	payloads := make([]*whatsapp.Message, 0, len(contacts))
	contactNums := make([]string, 0, len(contacts))
	for _, contact := range contacts {
		contactNums = append(contactNums, contact.To)
		payloads = append(payloads, &whatsapp.Message{
			MessagingProduct: whatsapp.MessagingProduct,
			To:               contact.To,
			Type:             whatsapp.TypeText,
			Text:             &whatsapp.TextPayload{Body: message},
		})
	}

	return &Outcome{
		Simulated: true,
		Contacts:  contactNums,
		Message:   message,
		Payloads:  payloads,
	}, nil
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func (s *Service) resolveUser(phoneNumber string) (*models.User, error) {
	user, err := s.users.FindUserBy("phone_number", phoneNumber)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.logg.Warnf("SOS user not found for number: %v", phoneNumber)
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, s.unexpected(pkgerrors.Wrap(err, "sos: user lookup failed"))
	}

	return user, nil
}

// unexpected records err to the diagnostics register & wraps it with the
// stored record.
func (s *Service) unexpected(err error) error {
	s.logg.Errorf("error sending SOS: %+v", err)
	record := s.diagnostics.Record(err)

	return &UnexpectedError{Record: record, Err: err}
}

func contactNumbers(outbounds []Outbound) []string {
	nums := make([]string, 0, len(outbounds))
	for _, outbound := range outbounds {
		nums = append(nums, outbound.Contact.To)
	}

	return nums
}

func messagesOf(outbounds []Outbound) []*whatsapp.Message {
	msgs := make([]*whatsapp.Message, 0, len(outbounds))
	for _, outbound := range outbounds {
		msgs = append(msgs, outbound.Message)
	}

	return msgs
}

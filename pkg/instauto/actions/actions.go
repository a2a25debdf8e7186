// Package actions holds what every action module shares: the session
// snapshot copied onto payloads at submission, the Requester that submits
// them, and the validation error returned by action constructors.
package actions

import (
	"context"
	"errors"
	"fmt"
	"instauto/pkg/instauto/device"
	"instauto/pkg/instauto/transport"
	"regexp"

	"github.com/go-resty/resty/v2"
)

// Session is the part of the client state an action needs at submission.
type Session struct {
	CsrfToken string
	UserID    string
	UUID      string
	DeviceID  string
	SessionID string
	Device    device.Profile
}

// Requester is what action modules submit through, the core client
// implements it.
type Requester interface {
	Do(ctx context.Context, req transport.Request) (*resty.Response, error)
	Session() Session
}

// Reserved are the fields the client fills in just before submission, they
// are zero on a freshly constructed action.
type Reserved struct {
	CsrfToken string `json:"_csrftoken,omitempty"`
	UID       string `json:"_uid,omitempty"`
	UUID      string `json:"_uuid,omitempty"`
}

func (r *Reserved) Fill(s Session) {
	r.CsrfToken = s.CsrfToken
	r.UID = s.UserID
	r.UUID = s.UUID
}

var ErrValidation = errors.New("invalid action")

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid action: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func NotEmpty(field, value string) error {
	if value == "" {
		return Invalid(field, "must not be empty")
	}
	return nil
}

func Positive(field string, value int) error {
	if value <= 0 {
		return Invalid(field, "must be positive")
	}
	return nil
}

// media ids are "<pk>" or "<pk>_<owner pk>", user ids are numeric
var mediaIDRegex = regexp.MustCompile(`^\d+(_\d+)?$`)
var userIDRegex = regexp.MustCompile(`^\d+$`)

func MediaID(field, value string) error {
	if err := NotEmpty(field, value); err != nil {
		return err
	}
	if !mediaIDRegex.MatchString(value) {
		return Invalid(field, "is not a media id")
	}
	return nil
}

func UserID(field, value string) error {
	if err := NotEmpty(field, value); err != nil {
		return err
	}
	if !userIDRegex.MatchString(value) {
		return Invalid(field, "is not a user id")
	}
	return nil
}

// Package profile edits the logged in account and looks up user profiles.
package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"instauto/pkg/instauto/actions"
	"instauto/pkg/instauto/transport"
	"net/http"
	"net/url"
	"unicode/utf8"

	"dario.cat/mergo"
	"github.com/go-resty/resty/v2"
)

var ErrCurrentProfile = errors.New("could not fetch current profile")

const maxBiographyLength = 150

type Gender int

const (
	GenderMale        Gender = 1
	GenderFemale      Gender = 2
	GenderUnspecified Gender = 3
	GenderCustom      Gender = 4
)

type UpdateOptions struct {
	ExternalURL string
	PhoneNumber string
	Username    string
	FullName    string
	Biography   string
	Email       string
}

// Update edits the account profile, fields left empty keep their current
// value since the platform clears whatever is omitted.
type Update struct {
	actions.Reserved
	ExternalURL string `json:"external_url"`
	PhoneNumber string `json:"phone_number"`
	Username    string `json:"username"`
	FullName    string `json:"first_name"`
	Biography   string `json:"biography"`
	Email       string `json:"email"`
}

func NewUpdate(opts UpdateOptions) (Update, error) {
	if opts == (UpdateOptions{}) {
		return Update{}, actions.Invalid("update", "must change at least one field")
	}
	if utf8.RuneCountInString(opts.Biography) > maxBiographyLength {
		return Update{}, actions.Invalid("biography", fmt.Sprintf("must be at most %d characters", maxBiographyLength))
	}
	if opts.ExternalURL != "" {
		u, err := url.Parse(opts.ExternalURL)
		if err != nil || u.Host == "" {
			return Update{}, actions.Invalid("external_url", "is not an absolute url")
		}
	}
	return Update{
		ExternalURL: opts.ExternalURL,
		PhoneNumber: opts.PhoneNumber,
		Username:    opts.Username,
		FullName:    opts.FullName,
		Biography:   opts.Biography,
		Email:       opts.Email,
	}, nil
}

type SetBiography struct {
	actions.Reserved
	RawText  string `json:"raw_text"`
	DeviceID string `json:"device_id,omitempty"`
}

// NewSetBiography accepts an empty text, which clears the biography.
func NewSetBiography(text string) (SetBiography, error) {
	if utf8.RuneCountInString(text) > maxBiographyLength {
		return SetBiography{}, actions.Invalid("raw_text", fmt.Sprintf("must be at most %d characters", maxBiographyLength))
	}
	return SetBiography{RawText: text}, nil
}

type SetGender struct {
	actions.Reserved
	Gender       Gender `json:"gender"`
	CustomGender string `json:"custom_gender"`
}

func NewSetGender(gender Gender, custom string) (SetGender, error) {
	if gender < GenderMale || gender > GenderCustom {
		return SetGender{}, actions.Invalid("gender", "must be between 1 and 4")
	}
	if gender == GenderCustom {
		if err := actions.NotEmpty("custom_gender", custom); err != nil {
			return SetGender{}, err
		}
	} else if custom != "" {
		return SetGender{}, actions.Invalid("custom_gender", "is only allowed with the custom gender")
	}
	return SetGender{Gender: gender, CustomGender: custom}, nil
}

type SetVisibility struct {
	actions.Reserved
	private bool
}

func NewSetVisibility(private bool) SetVisibility {
	return SetVisibility{private: private}
}

func (v SetVisibility) Private() bool {
	return v.private
}

type Info struct {
	UserID string
}

func NewInfo(userID string) (Info, error) {
	if err := actions.UserID("user_id", userID); err != nil {
		return Info{}, err
	}
	return Info{UserID: userID}, nil
}

type Module struct {
	r actions.Requester
}

func New(r actions.Requester) Module {
	return Module{r: r}
}

type currentUserResponse struct {
	User struct {
		ExternalURL string `json:"external_url"`
		PhoneNumber string `json:"phone_number"`
		Username    string `json:"username"`
		FullName    string `json:"full_name"`
		Biography   string `json:"biography"`
		Email       string `json:"email"`
	} `json:"user"`
}

// Current fetches the editable fields of the account profile.
func (m Module) Current(ctx context.Context) (UpdateOptions, error) {
	res, err := m.r.Do(ctx, transport.Request{
		Endpoint: "accounts/current_user/",
		Method:   http.MethodGet,
		Query:    url.Values{"edit": []string{"true"}},
	})
	if err != nil {
		return UpdateOptions{}, err
	}
	if !res.IsSuccess() {
		return UpdateOptions{}, fmt.Errorf("%w: %s", ErrCurrentProfile, res.Status())
	}

	var current currentUserResponse
	err = json.Unmarshal(res.Body(), &current)
	if err != nil {
		return UpdateOptions{}, fmt.Errorf("%w: %w", ErrCurrentProfile, err)
	}
	return UpdateOptions{
		ExternalURL: current.User.ExternalURL,
		PhoneNumber: current.User.PhoneNumber,
		Username:    current.User.Username,
		FullName:    current.User.FullName,
		Biography:   current.User.Biography,
		Email:       current.User.Email,
	}, nil
}

func (m Module) Update(ctx context.Context, obj Update) (*resty.Response, error) {
	current, err := m.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("profile update: %w", err)
	}
	err = mergo.Merge(&obj, Update{
		ExternalURL: current.ExternalURL,
		PhoneNumber: current.PhoneNumber,
		Username:    current.Username,
		FullName:    current.FullName,
		Biography:   current.Biography,
		Email:       current.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("profile update: merge current profile: %w", err)
	}

	obj.Fill(m.r.Session())
	return m.r.Do(ctx, transport.Request{
		Endpoint: "accounts/edit_profile/",
		Method:   http.MethodPost,
		Data:     obj,
		Signed:   true,
	})
}

func (m Module) SetBiography(ctx context.Context, obj SetBiography) (*resty.Response, error) {
	session := m.r.Session()
	obj.Fill(session)
	obj.DeviceID = session.DeviceID
	return m.r.Do(ctx, transport.Request{
		Endpoint: "accounts/set_biography/",
		Method:   http.MethodPost,
		Data:     obj,
		Signed:   true,
	})
}

func (m Module) SetGender(ctx context.Context, obj SetGender) (*resty.Response, error) {
	obj.Fill(m.r.Session())
	return m.r.Do(ctx, transport.Request{
		Endpoint: "accounts/set_gender/",
		Method:   http.MethodPost,
		Data:     obj,
		Signed:   true,
	})
}

func (m Module) SetVisibility(ctx context.Context, obj SetVisibility) (*resty.Response, error) {
	obj.Fill(m.r.Session())
	endpoint := "accounts/set_public/"
	if obj.private {
		endpoint = "accounts/set_private/"
	}
	return m.r.Do(ctx, transport.Request{
		Endpoint: endpoint,
		Method:   http.MethodPost,
		Data:     obj,
		Signed:   true,
	})
}

func (m Module) Info(ctx context.Context, obj Info) (*resty.Response, error) {
	return m.r.Do(ctx, transport.Request{
		Endpoint: fmt.Sprintf("users/%s/info/", obj.UserID),
		Method:   http.MethodGet,
	})
}

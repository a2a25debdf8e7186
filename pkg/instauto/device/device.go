// Package device holds the identifiers and descriptive profiles that make the
// client look like one specific Android phone running one specific app build.
package device

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mazen160/go-random"
)

// State is the per-login identity of the client. It is created before the
// first login, filled by login, and persisted with the save file.
type State struct {
	UserID        string `json:"user_id"`
	UUID          string `json:"uuid"`
	DeviceID      string `json:"device_id"`
	PhoneID       string `json:"phone_id"`
	AdvertisingID string `json:"advertising_id"`
	SessionID     string `json:"session_id"`
	CsrfToken     string `json:"csrf_token"`
	Mid           string `json:"mid"`
	// bearer token handed out by the login response
	Authorization string `json:"authorization"`
}

const hexCharset = "0123456789abcdef"

// NewState generates the identifiers an Android install has before it ever
// logged in.
func NewState() (State, error) {
	deviceSuffix, err := random.Random(16, hexCharset, true)
	if err != nil {
		return State{}, fmt.Errorf("generate device id: %w", err)
	}
	return State{
		UUID:          uuid.NewString(),
		DeviceID:      "android-" + deviceSuffix,
		PhoneID:       uuid.NewString(),
		AdvertisingID: uuid.NewString(),
		SessionID:     uuid.NewString(),
	}, nil
}

// LoggedIn reports whether login has populated the user id.
func (s State) LoggedIn() bool {
	return s.UserID != ""
}

// Profile describes the physical phone the client mimics.
type Profile struct {
	Manufacturer      string `json:"manufacturer"`
	Model             string `json:"model"`
	Device            string `json:"device"`
	Chipset           string `json:"chipset"`
	AndroidSDKVersion int    `json:"android_sdk_version"`
	AndroidRelease    string `json:"android_release"`
	DPI               string `json:"dpi"`
	Resolution        string `json:"resolution"`
}

var knownProfiles = map[string]Profile{
	"oneplus-6t": {
		Manufacturer:      "OnePlus",
		Model:             "ONEPLUS A6013",
		Device:            "OnePlus6T",
		Chipset:           "qcom",
		AndroidSDKVersion: 29,
		AndroidRelease:    "10",
		DPI:               "420dpi",
		Resolution:        "1080x2260",
	},
	"pixel-5": {
		Manufacturer:      "Google",
		Model:             "Pixel 5",
		Device:            "redfin",
		Chipset:           "redfin",
		AndroidSDKVersion: 30,
		AndroidRelease:    "11",
		DPI:               "440dpi",
		Resolution:        "1080x2340",
	},
	"galaxy-s21": {
		Manufacturer:      "samsung",
		Model:             "SM-G991B",
		Device:            "o1s",
		Chipset:           "exynos2100",
		AndroidSDKVersion: 31,
		AndroidRelease:    "12",
		DPI:               "480dpi",
		Resolution:        "1080x2400",
	},
	"galaxy-s10": {
		Manufacturer:      "samsung",
		Model:             "SM-G973F",
		Device:            "beyond1",
		Chipset:           "exynos9820",
		AndroidSDKVersion: 29,
		AndroidRelease:    "10",
		DPI:               "560dpi",
		Resolution:        "1440x3040",
	},
	"mi-9t": {
		Manufacturer:      "Xiaomi",
		Model:             "Mi 9T",
		Device:            "davinci",
		Chipset:           "qcom",
		AndroidSDKVersion: 30,
		AndroidRelease:    "11",
		DPI:               "440dpi",
		Resolution:        "1080x2340",
	},
}

// KnownProfile returns one of the phones the client ships with.
func KnownProfile(name string) (Profile, bool) {
	p, ok := knownProfiles[name]
	return p, ok
}

// KnownProfileNames lists the names accepted by KnownProfile.
func KnownProfileNames() []string {
	names := make([]string, 0, len(knownProfiles))
	for name := range knownProfiles {
		names = append(names, name)
	}
	return names
}

// RandomProfile picks one of the known phones.
func RandomProfile() (Profile, error) {
	name, err := random.Choice(KnownProfileNames())
	if err != nil {
		return Profile{}, fmt.Errorf("choose device profile: %w", err)
	}
	return knownProfiles[name], nil
}

// AppProfile describes the build of the mobile app being mimicked, including
// the key its requests are signed with.
type AppProfile struct {
	AppVersion          string `json:"app_version"`
	VersionCode         string `json:"version_code"`
	Capabilities        string `json:"capabilities"`
	AppID               string `json:"app_id"`
	Locale              string `json:"locale"`
	BloksVersionID      string `json:"bloks_version_id"`
	SignatureKey        string `json:"signature_key"`
	SignatureKeyVersion string `json:"signature_key_version"`
}

func DefaultAppProfile() AppProfile {
	return AppProfile{
		AppVersion:          "169.3.0.30.135",
		VersionCode:         "264009049",
		Capabilities:        "3brTvx0=",
		AppID:               "567067343352427",
		Locale:              "en_US",
		BloksVersionID:      "0a3ae4c88248863609c67e278f34af44673cff300bc76add965a9fb036bd3ca3",
		SignatureKey:        "4f8732eb9ba7d1c8e8897a75d6474d4eb3f5279137431b2aafb71fafe2abe178",
		SignatureKeyVersion: "4",
	}
}

// UserAgent renders the user agent the app sends from this phone.
func UserAgent(app AppProfile, phone Profile) string {
	return fmt.Sprintf(
		"Instagram %s Android (%d/%s; %s; %s; %s; %s; %s; %s; %s; %s)",
		app.AppVersion,
		phone.AndroidSDKVersion,
		phone.AndroidRelease,
		phone.DPI,
		phone.Resolution,
		phone.Manufacturer,
		phone.Model,
		phone.Device,
		phone.Chipset,
		app.Locale,
		app.VersionCode,
	)
}

// AcceptLanguage turns an app locale ("en_US") into a header value ("en-US").
func AcceptLanguage(locale string) string {
	return strings.ReplaceAll(locale, "_", "-")
}

package device

import (
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var deviceIDPattern = regexp.MustCompile(`^android-[0-9a-f]{16}$`)

func TestNewState(t *testing.T) {
	state, err := NewState()
	require.NoError(t, err)

	require.Regexp(t, deviceIDPattern, state.DeviceID)
	for _, id := range []string{state.UUID, state.PhoneID, state.AdvertisingID, state.SessionID} {
		_, err := uuid.Parse(id)
		require.NoError(t, err, id)
	}
	require.False(t, state.LoggedIn())
	require.Empty(t, state.CsrfToken)
	require.Empty(t, state.Authorization)

	other, err := NewState()
	require.NoError(t, err)
	require.NotEqual(t, state.UUID, other.UUID)
	require.NotEqual(t, state.DeviceID, other.DeviceID)
}

func TestRandomProfile(t *testing.T) {
	profile, err := RandomProfile()
	require.NoError(t, err)
	require.Contains(t, knownProfiles, nameOf(t, profile))
}

func nameOf(t *testing.T, p Profile) string {
	for name, known := range knownProfiles {
		if known == p {
			return name
		}
	}
	t.Fatalf("profile %+v is not a known profile", p)
	return ""
}

func TestKnownProfile(t *testing.T) {
	for _, name := range KnownProfileNames() {
		p, ok := KnownProfile(name)
		require.True(t, ok)
		require.NotEmpty(t, p.Manufacturer)
		require.NotZero(t, p.AndroidSDKVersion)
	}
	_, ok := KnownProfile("nokia-3310")
	require.False(t, ok)
}

func TestUserAgent(t *testing.T) {
	phone, _ := KnownProfile("oneplus-6t")
	ua := UserAgent(DefaultAppProfile(), phone)
	require.Equal(
		t,
		"Instagram 169.3.0.30.135 Android (29/10; 420dpi; 1080x2260; OnePlus; ONEPLUS A6013; OnePlus6T; qcom; en_US; 264009049)",
		ua,
	)
}

func TestAcceptLanguage(t *testing.T) {
	require.Equal(t, "en-US", AcceptLanguage("en_US"))
	require.Equal(t, "nl", AcceptLanguage("nl"))
}

package profile

import (
	"context"
	"instauto/pkg/instauto/actions"
	"instauto/pkg/instauto/actions/actionstest"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const currentUser = `{
	"user": {
		"external_url": "https://example.com",
		"phone_number": "+31600000000",
		"username": "instauto",
		"full_name": "Insta Auto",
		"biography": "old bio",
		"email": "me@example.com"
	},
	"status": "ok"
}`

func serveCurrentUser(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if strings.HasSuffix(req.URL.Path, "/accounts/current_user/") {
		w.Write([]byte(currentUser))
		return
	}
	w.Write([]byte(`{"status":"ok"}`))
}

func TestNewUpdate(t *testing.T) {
	_, err := NewUpdate(UpdateOptions{})
	require.ErrorIs(t, err, actions.ErrValidation)
	_, err = NewUpdate(UpdateOptions{Biography: strings.Repeat("a", 151)})
	require.ErrorIs(t, err, actions.ErrValidation)
	_, err = NewUpdate(UpdateOptions{ExternalURL: "not a url"})
	require.ErrorIs(t, err, actions.ErrValidation)

	update, err := NewUpdate(UpdateOptions{Biography: strings.Repeat("ä", 150)})
	require.NoError(t, err)
	require.Empty(t, update.Username)
}

func TestUpdateKeepsCurrentFields(t *testing.T) {
	r := actionstest.New(t)
	r.Handler = serveCurrentUser
	m := New(r)

	update, err := NewUpdate(UpdateOptions{Biography: "new bio"})
	require.NoError(t, err)
	_, err = m.Update(context.Background(), update)
	require.NoError(t, err)

	reqs := r.Requests()
	require.Len(t, reqs, 2)
	require.Equal(t, http.MethodGet, reqs[0].Method)
	require.Equal(t, "/api/v1/accounts/current_user/", reqs[0].Path)
	require.Equal(t, "true", reqs[0].Query.Get("edit"))

	require.Equal(t, "/api/v1/accounts/edit_profile/", reqs[1].Path)
	body := reqs[1].Signed(t)
	require.Equal(t, "new bio", body["biography"])
	require.Equal(t, "instauto", body["username"])
	require.Equal(t, "Insta Auto", body["first_name"])
	require.Equal(t, "https://example.com", body["external_url"])
	require.Equal(t, "+31600000000", body["phone_number"])
	require.Equal(t, "me@example.com", body["email"])
	require.Equal(t, "csrf-token", body["_csrftoken"])
}

func TestUpdateCurrentProfileFails(t *testing.T) {
	r := actionstest.New(t)
	r.Handler = func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}
	m := New(r)

	update, err := NewUpdate(UpdateOptions{Username: "renamed"})
	require.NoError(t, err)
	_, err = m.Update(context.Background(), update)
	require.ErrorIs(t, err, ErrCurrentProfile)
	require.Len(t, r.Requests(), 1)

	r.Server.Close()
	_, err = m.Update(context.Background(), update)
	require.Error(t, err)
}

func TestSetters(t *testing.T) {
	r := actionstest.New(t)
	m := New(r)
	ctx := context.Background()

	bio, err := NewSetBiography("hello")
	require.NoError(t, err)
	_, err = m.SetBiography(ctx, bio)
	require.NoError(t, err)

	gender, err := NewSetGender(GenderCustom, "nonbinary")
	require.NoError(t, err)
	_, err = m.SetGender(ctx, gender)
	require.NoError(t, err)

	_, err = m.SetVisibility(ctx, NewSetVisibility(true))
	require.NoError(t, err)
	_, err = m.SetVisibility(ctx, NewSetVisibility(false))
	require.NoError(t, err)

	reqs := r.Requests()
	require.Equal(t, "/api/v1/accounts/set_biography/", reqs[0].Path)
	require.Equal(t, "hello", reqs[0].Signed(t)["raw_text"])
	require.Equal(t, actionstest.DefaultSession.DeviceID, reqs[0].Signed(t)["device_id"])

	require.Equal(t, "/api/v1/accounts/set_gender/", reqs[1].Path)
	require.Equal(t, float64(4), reqs[1].Signed(t)["gender"])
	require.Equal(t, "nonbinary", reqs[1].Signed(t)["custom_gender"])

	require.Equal(t, "/api/v1/accounts/set_private/", reqs[2].Path)
	require.Equal(t, "/api/v1/accounts/set_public/", reqs[3].Path)
	require.Equal(t, "1001", reqs[3].Signed(t)["_uid"])
}

func TestNewSetGender(t *testing.T) {
	_, err := NewSetGender(0, "")
	require.ErrorIs(t, err, actions.ErrValidation)
	_, err = NewSetGender(GenderCustom, "")
	require.ErrorIs(t, err, actions.ErrValidation)
	_, err = NewSetGender(GenderMale, "custom")
	require.ErrorIs(t, err, actions.ErrValidation)
	g, err := NewSetGender(GenderFemale, "")
	require.NoError(t, err)
	require.Equal(t, GenderFemale, g.Gender)
}

func TestInfo(t *testing.T) {
	r := actionstest.New(t)
	m := New(r)

	_, err := NewInfo("me")
	require.ErrorIs(t, err, actions.ErrValidation)

	info, err := NewInfo("2002")
	require.NoError(t, err)
	_, err = m.Info(context.Background(), info)
	require.NoError(t, err)
	require.Equal(t, "/api/v1/users/2002/info/", r.Requests()[0].Path)
}

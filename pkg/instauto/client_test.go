package instauto

import (
	"context"
	"encoding/json"
	"instauto/internal/components/chrono"
	"instauto/internal/components/telemetry"
	"instauto/pkg/instauto/actions"
	"instauto/pkg/instauto/actions/post"
	"instauto/pkg/instauto/device"
	"instauto/pkg/instauto/signer"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type received struct {
	path   string
	header http.Header
	body   map[string]any
}

// fakePlatform answers the login flow and records every signed request.
type fakePlatform struct {
	t      *testing.T
	server *httptest.Server
	signer signer.Signer

	pubKey      string
	loginStatus int

	mutex    sync.Mutex
	requests []received
}

func newFakePlatform(t *testing.T) *fakePlatform {
	app := device.DefaultAppProfile()
	p := &fakePlatform{
		t:           t,
		signer:      signer.New(app.SignatureKey, app.SignatureKeyVersion),
		loginStatus: http.StatusOK,
	}
	p.server = httptest.NewServer(http.HandlerFunc(p.serve))
	t.Cleanup(p.server.Close)
	return p
}

func (p *fakePlatform) serve(w http.ResponseWriter, req *http.Request) {
	raw, _ := io.ReadAll(req.Body)
	rec := received{path: req.URL.Path, header: req.Header.Clone()}
	form, err := url.ParseQuery(string(raw))
	if err == nil && form.Has("signed_body") {
		_, body, err := p.signer.Open(form.Get("signed_body"))
		if err != nil {
			p.t.Errorf("bad signature on %s: %s", req.URL.Path, err)
		}
		json.Unmarshal(body, &rec.body)
	}
	p.mutex.Lock()
	p.requests = append(p.requests, rec)
	p.mutex.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch req.URL.Path {
	case "/api/v1/qe/sync/":
		http.SetCookie(w, &http.Cookie{Name: "csrftoken", Value: "synced-csrf", Path: "/"})
		w.Header().Set("ig-set-x-mid", "mid-value")
		if p.pubKey != "" {
			w.Header().Set("ig-set-password-encryption-key-id", "41")
			w.Header().Set("ig-set-password-encryption-pub-key", p.pubKey)
		}
		w.Write([]byte(`{"status":"ok"}`))
	case "/api/v1/accounts/login/":
		if p.loginStatus != http.StatusOK {
			w.WriteHeader(p.loginStatus)
			w.Write([]byte(`{"message":"The password you entered is incorrect.","status":"fail"}`))
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "csrftoken", Value: "login-csrf", Path: "/"})
		w.Header().Set("ig-set-authorization", "Bearer IGT:2:token")
		w.Write([]byte(`{"logged_in_user":{"pk":424242,"username":"bob"},"status":"ok"}`))
	default:
		w.Write([]byte(`{"status":"ok"}`))
	}
}

func (p *fakePlatform) received() []received {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	out := make([]received, len(p.requests))
	copy(out, p.requests)
	return out
}

func (p *fakePlatform) options() ClientOptions {
	phone, _ := device.KnownProfile("pixel-5")
	return ClientOptions{
		Username:  "bob",
		Password:  "hunter2",
		BaseURL:   p.server.URL + "/api/v1/",
		UploadURL: p.server.URL + "/",
		Device:    &phone,
		Telemetry: &telemetry.RecorderAPI{},
		Chrono:    chrono.FixedImpl{Time: testTime},
	}
}

func TestNewClientDefaults(t *testing.T) {
	c, err := NewClient(ClientOptions{Telemetry: &telemetry.RecorderAPI{}})
	require.NoError(t, err)

	state := c.State()
	require.NotEmpty(t, state.UUID)
	require.True(t, strings.HasPrefix(state.DeviceID, "android-"))
	require.False(t, state.LoggedIn())
	require.NotEmpty(t, c.Device().Model)
	require.Equal(t, device.DefaultAppProfile(), c.App())
}

func TestLogin(t *testing.T) {
	p := newFakePlatform(t)
	c, err := NewClient(p.options())
	require.NoError(t, err)

	require.NoError(t, c.Login(context.Background()))

	state := c.State()
	require.Equal(t, "424242", state.UserID)
	require.Equal(t, "Bearer IGT:2:token", state.Authorization)
	require.Equal(t, "mid-value", state.Mid)
	require.Equal(t, "login-csrf", state.CsrfToken)
	require.True(t, state.LoggedIn())

	reqs := p.received()
	require.Len(t, reqs, 2)
	require.Equal(t, "/api/v1/qe/sync/", reqs[0].path)
	require.Equal(t, state.UUID, reqs[0].body["id"])

	login := reqs[1]
	require.Equal(t, "/api/v1/accounts/login/", login.path)
	require.Equal(t, "bob", login.body["username"])
	require.Equal(t, "synced-csrf", login.body["_csrftoken"])
	require.Equal(t, state.PhoneID, login.body["phone_id"])
	require.Equal(t, jazoest(state.PhoneID), login.body["jazoest"])
	// no key was handed out, so the plain format is used
	require.Equal(t, "#PWD_INSTAGRAM:0:1709294400:hunter2", login.body["enc_password"])
	require.Equal(t, "mid-value", login.header.Get("X-MID"))
}

func TestLoginEncryptsPassword(t *testing.T) {
	p := newFakePlatform(t)
	private, encoded := newPasswordKey(t)
	p.pubKey = encoded

	c, err := NewClient(p.options())
	require.NoError(t, err)
	require.NoError(t, c.Login(context.Background()))

	enc, ok := p.received()[1].body["enc_password"].(string)
	require.True(t, ok)
	require.Equal(t, "hunter2", decryptPassword(t, private, 41, enc))
}

func TestLoginFailed(t *testing.T) {
	p := newFakePlatform(t)
	p.loginStatus = http.StatusBadRequest
	opts := p.options()
	tel := &telemetry.RecorderAPI{}
	opts.Telemetry = tel

	c, err := NewClient(opts)
	require.NoError(t, err)

	err = c.Login(context.Background())
	require.ErrorIs(t, err, ErrLoginFailed)
	require.Contains(t, err.Error(), "The password you entered is incorrect.")
	require.False(t, c.State().LoggedIn())
	require.NotEmpty(t, tel.Reports("warning"))
}

func TestLoginRequiresCredentials(t *testing.T) {
	p := newFakePlatform(t)
	opts := p.options()
	opts.Password = ""

	c, err := NewClient(opts)
	require.NoError(t, err)
	require.ErrorIs(t, c.Login(context.Background()), actions.ErrValidation)
	require.Empty(t, p.received())
}

func TestLikeThroughClient(t *testing.T) {
	p := newFakePlatform(t)
	c, err := NewClient(p.options())
	require.NoError(t, err)
	require.NoError(t, c.Login(context.Background()))

	like, err := post.NewLike("12345")
	require.NoError(t, err)
	res, err := c.Post().Like(context.Background(), like)
	require.NoError(t, err)
	require.True(t, res.IsSuccess())

	reqs := p.received()
	last := reqs[len(reqs)-1]
	require.Equal(t, "/api/v1/media/12345/like/", last.path)
	require.Equal(t, "login-csrf", last.body["_csrftoken"])
	require.Equal(t, c.State().UUID, last.body["_uuid"])
	require.Equal(t, "424242", last.body["_uid"])
	require.Equal(t, "Bearer IGT:2:token", last.header.Get("Authorization"))
}

func TestSaveAndLoad(t *testing.T) {
	p := newFakePlatform(t)
	c, err := NewClient(p.options())
	require.NoError(t, err)
	require.NoError(t, c.Login(context.Background()))

	path := filepath.Join(t.TempDir(), ".instauto.save")
	require.NoError(t, c.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())

	opts := p.options()
	opts.Device = nil
	loaded, err := NewClientFromFile(path, opts)
	require.NoError(t, err)

	require.Empty(t, cmp.Diff(c.State(), loaded.State()))
	require.Empty(t, cmp.Diff(c.Device(), loaded.Device()))
	require.Empty(t, cmp.Diff(c.App(), loaded.App()))
	require.Equal(t, "login-csrf", loaded.Session().CsrfToken)

	// saving the loaded client reproduces the same file
	second := filepath.Join(t.TempDir(), ".instauto.save")
	require.NoError(t, loaded.Save(second))
	first, err := os.ReadFile(path)
	require.NoError(t, err)
	again, err := os.ReadFile(second)
	require.NoError(t, err)
	require.JSONEq(t, string(first), string(again))
}

func TestLoadStateFailures(t *testing.T) {
	dir := t.TempDir()

	_, err := NewClientFromFile(filepath.Join(dir, "missing.save"), ClientOptions{})
	require.ErrorIs(t, err, ErrLoadState)
	require.ErrorIs(t, err, os.ErrNotExist)

	corrupt := filepath.Join(dir, "corrupt.save")
	require.NoError(t, os.WriteFile(corrupt, []byte("{not json"), 0600))
	_, err = NewClientFromFile(corrupt, ClientOptions{})
	require.ErrorIs(t, err, ErrLoadState)

	empty := filepath.Join(dir, "empty.save")
	require.NoError(t, os.WriteFile(empty, []byte("{}"), 0600))
	_, err = NewClientFromFile(empty, ClientOptions{})
	require.ErrorIs(t, err, ErrLoadState)
}

func TestSessionFallsBackToState(t *testing.T) {
	state, err := device.NewState()
	require.NoError(t, err)
	state.CsrfToken = "persisted"
	state.UserID = "7"

	c, err := NewClient(ClientOptions{State: &state, Telemetry: &telemetry.RecorderAPI{}})
	require.NoError(t, err)

	session := c.Session()
	require.Equal(t, "persisted", session.CsrfToken)
	require.Equal(t, "7", session.UserID)
	require.Equal(t, state.DeviceID, session.DeviceID)
}

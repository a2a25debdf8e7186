// Package actionstest runs action modules against a local server through the
// real transport, recording what reaches the wire.
package actionstest

import (
	"context"
	"encoding/json"
	"instauto/internal/components/chrono"
	"instauto/internal/components/telemetry"
	"instauto/pkg/instauto/actions"
	"instauto/pkg/instauto/device"
	"instauto/pkg/instauto/signer"
	"instauto/pkg/instauto/transport"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
)

var Signer = signer.New("actionstest-key", "4")
var Time = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// WireRequest is a request as the server received it.
type WireRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// Form parses a form encoded body.
func (r WireRequest) Form(t testing.TB) url.Values {
	t.Helper()
	form, err := url.ParseQuery(string(r.Body))
	if err != nil {
		t.Fatal(err)
	}
	return form
}

// Signed opens the signed_body of the request and decodes its json.
func (r WireRequest) Signed(t testing.TB) map[string]any {
	t.Helper()
	_, body, err := Signer.Open(r.Form(t).Get("signed_body"))
	if err != nil {
		t.Fatal(err)
	}
	var out map[string]any
	err = json.Unmarshal(body, &out)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

// Requester implements actions.Requester on top of a real transport.
type Requester struct {
	Server    *httptest.Server
	Transport *transport.Transport
	Sess      actions.Session

	mutex sync.Mutex
	wire  []WireRequest
	// Handler answers requests, it defaults to `{"status":"ok"}`.
	Handler http.HandlerFunc
}

// Session values every test requester starts with.
var DefaultSession = actions.Session{
	CsrfToken: "csrf-token",
	UserID:    "1001",
	UUID:      "7f8f6a3e-7f5e-4b39-9a4e-4c1f5f0d2c11",
	DeviceID:  "android-0123456789abcdef",
	SessionID: "0f3a2b9e-2f3e-4c1d-8a2b-9d8c7b6a5f40",
	Device: device.Profile{
		Manufacturer:      "Google",
		Model:             "Pixel 5",
		Device:            "redfin",
		Chipset:           "redfin",
		AndroidSDKVersion: 30,
		AndroidRelease:    "11",
		DPI:               "440dpi",
		Resolution:        "1080x2340",
	},
}

func New(t testing.TB) *Requester {
	r := &Requester{Sess: DefaultSession}
	r.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		body, _ := io.ReadAll(req.Body)
		r.mutex.Lock()
		r.wire = append(r.wire, WireRequest{
			Method: req.Method,
			Path:   req.URL.Path,
			Query:  req.URL.Query(),
			Header: req.Header.Clone(),
			Body:   body,
		})
		r.mutex.Unlock()

		if r.Handler != nil {
			r.Handler(w, req)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}))
	t.Cleanup(r.Server.Close)

	state := &device.State{
		UserID:    r.Sess.UserID,
		UUID:      r.Sess.UUID,
		DeviceID:  r.Sess.DeviceID,
		SessionID: r.Sess.SessionID,
	}
	tr, err := transport.New(transport.Options{
		BaseURL:   r.Server.URL + "/api/v1/",
		App:       device.DefaultAppProfile(),
		Device:    r.Sess.Device,
		State:     state,
		Signer:    Signer,
		Chrono:    chrono.FixedImpl{Time: Time},
		Telemetry: &telemetry.RecorderAPI{},
	})
	if err != nil {
		t.Fatal(err)
	}
	r.Transport = tr
	return r
}

func (r *Requester) Do(ctx context.Context, req transport.Request) (*resty.Response, error) {
	return r.Transport.Do(ctx, req)
}

func (r *Requester) Session() actions.Session {
	return r.Sess
}

// UploadURL is where rupload requests should be sent in tests.
func (r *Requester) UploadURL() string {
	return r.Server.URL + "/"
}

// Requests returns everything the server received so far.
func (r *Requester) Requests() []WireRequest {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	out := make([]WireRequest, len(r.wire))
	copy(out, r.wire)
	return out
}

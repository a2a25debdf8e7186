// Package transport sends requests to the private API the way the mobile app
// does: same default headers, one persistent cookie jar, and signed bodies for
// the endpoints that require them.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"instauto/internal/components/assert"
	"instauto/internal/components/chrono"
	"instauto/internal/components/telemetry"
	"instauto/pkg/instauto/device"
	"instauto/pkg/instauto/signer"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/net/publicsuffix"
)

const (
	report_transport_do = "transport.do"
)

const DefaultBaseURL = "https://i.instagram.com/api/v1/"

type Options struct {
	// defaults to DefaultBaseURL
	BaseURL string
	// zero means no timeout beyond what net/http does
	Timeout time.Duration

	App    device.AppProfile
	Device device.Profile
	// State is read on every request, so changes made by login are picked up.
	State     *device.State
	Signer    signer.Signer
	Chrono    chrono.API
	Telemetry telemetry.API
	// every exchange is written here when set
	Dump telemetry.ExchangeOutput
}

type Transport struct {
	http    *resty.Client
	baseURL *url.URL
	signer  signer.Signer
	state   *device.State
	chrono  chrono.API
	tel     telemetry.API
}

func New(opts Options) (*Transport, error) {
	assert.NotNil("transport state", opts.State)
	assert.NotNil("transport telemetry", opts.Telemetry)
	if opts.Chrono == nil {
		opts.Chrono = chrono.StandardImpl{}
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}

	tel := telemetry.NewScopedAPI("transport", opts.Telemetry)

	baseURL, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(opts.BaseURL)
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	httpClient.SetCookieJar(jar)
	httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(
		httpClient.GetClient().Transport,
		// only the tls configuration is wanted, the browser headers would
		// contradict the mobile ones
		cloudflarebp.Options{AddMissingHeaders: false},
	)
	if opts.Timeout > 0 {
		httpClient.SetTimeout(opts.Timeout)
	}
	httpClient.SetHeaders(DefaultHeaders(opts.App, opts.Device, *opts.State))

	t := &Transport{
		http:    httpClient,
		baseURL: baseURL,
		signer:  opts.Signer,
		state:   opts.State,
		chrono:  opts.Chrono,
		tel:     tel,
	}
	httpClient.OnBeforeRequest(t.sessionHeaders)
	httpClient.OnAfterResponse(t.hostCookies)
	telemetry.InstrumentResty(httpClient, "instauto/http", tel, opts.Dump)

	return t, nil
}

// DefaultHeaders are the headers the app attaches to every request.
func DefaultHeaders(app device.AppProfile, phone device.Profile, state device.State) map[string]string {
	return map[string]string{
		"User-Agent":                  device.UserAgent(app, phone),
		"Accept-Language":             device.AcceptLanguage(app.Locale),
		"X-IG-App-Locale":             app.Locale,
		"X-IG-Device-Locale":          app.Locale,
		"X-IG-Mapped-Locale":          app.Locale,
		"X-IG-App-Startup-Country":    "US",
		"X-IG-Capabilities":           app.Capabilities,
		"X-IG-App-ID":                 app.AppID,
		"X-IG-Connection-Type":        "WIFI",
		"X-IG-Bandwidth-Speed-KBPS":   "-1.000",
		"X-IG-Bandwidth-TotalBytes-B": "0",
		"X-IG-Bandwidth-TotalTime-MS": "0",
		"X-IG-WWW-Claim":              "0",
		"X-Bloks-Version-Id":          app.BloksVersionID,
		"X-Bloks-Is-Layout-RTL":       "false",
		"X-IG-Device-ID":              state.UUID,
		"X-IG-Android-ID":             state.DeviceID,
		"X-Pigeon-Session-Id":         state.SessionID,
		"X-FB-HTTP-Engine":            "Liger",
	}
}

func (t *Transport) sessionHeaders(_ *resty.Client, req *resty.Request) error {
	now := t.chrono.Now()
	req.SetHeader("X-Pigeon-Rawclienttime", strconv.FormatFloat(float64(now.UnixMilli())/1000, 'f', 3, 64))
	if t.state.Authorization != "" && req.Header.Get("Authorization") == "" {
		req.SetHeader("Authorization", t.state.Authorization)
	}
	if t.state.Mid != "" && req.Header.Get("X-MID") == "" {
		req.SetHeader("X-MID", t.state.Mid)
	}
	return nil
}

// hostCookies widens cookies set without a Path attribute to the whole host,
// the jar would otherwise scope them to the endpoint that set them.
func (t *Transport) hostCookies(_ *resty.Client, res *resty.Response) error {
	if res.RawResponse == nil || res.Request.RawRequest == nil {
		return nil
	}
	var widened []*http.Cookie
	for _, c := range res.RawResponse.Cookies() {
		if c.Path == "" {
			c.Path = "/"
			widened = append(widened, c)
		}
	}
	if len(widened) > 0 {
		t.http.GetClient().Jar.SetCookies(res.Request.RawRequest.URL, widened)
	}
	return nil
}

type Request struct {
	// relative to the base url unless absolute
	Endpoint string
	// defaults to POST when there is a body and GET otherwise
	Method string
	// json serializable payload, signed when Signed is set, form encoded otherwise
	Data    any
	Query   url.Values
	Headers map[string]string
	// raw body, takes precedence over Data
	Body   []byte
	Signed bool
}

func (r Request) method() string {
	if r.Method != "" {
		return r.Method
	}
	if r.Data != nil || r.Body != nil {
		return http.MethodPost
	}
	return http.MethodGet
}

// Do issues the request and hands back the response untouched, a non-2xx
// status is not an error.
func (t *Transport) Do(ctx context.Context, req Request) (*resty.Response, error) {
	method := req.method()

	r := t.http.R().SetContext(ctx)
	if len(req.Query) > 0 {
		r.SetQueryParamsFromValues(req.Query)
	}
	if len(req.Headers) > 0 {
		r.SetHeaders(req.Headers)
	}

	switch {
	case req.Body != nil:
		if r.Header.Get("Content-Type") == "" {
			r.SetHeader("Content-Type", "application/octet-stream")
		}
		r.SetBody(req.Body)
	case req.Signed:
		envelope, err := t.signer.Envelope(req.Data)
		if err != nil {
			t.tel.ReportBroken(report_transport_do, fmt.Errorf("sign: %w", err), req.Endpoint)
			return nil, fmt.Errorf("%s %s: %w", method, req.Endpoint, err)
		}
		r.SetFormDataFromValues(envelope)
	case req.Data != nil:
		values, err := FormValues(req.Data)
		if err != nil {
			t.tel.ReportBroken(report_transport_do, fmt.Errorf("form encode: %w", err), req.Endpoint)
			return nil, fmt.Errorf("%s %s: %w", method, req.Endpoint, err)
		}
		r.SetFormDataFromValues(values)
	}

	res, err := r.Execute(method, req.Endpoint)
	if err != nil {
		return res, fmt.Errorf("%s %s: %w", method, req.Endpoint, err)
	}
	return res, nil
}

// FormValues flattens a json serializable struct or map into form fields,
// nested values are sent as their json encoding.
func FormValues(data any) (url.Values, error) {
	encoded, err := signer.Encode(data)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	err = json.Unmarshal(encoded, &fields)
	if err != nil {
		return nil, fmt.Errorf("payload is not an object: %w", err)
	}

	values := url.Values{}
	for key, raw := range fields {
		var str string
		if json.Unmarshal(raw, &str) == nil {
			values.Set(key, str)
			continue
		}
		if string(raw) == "null" {
			continue
		}
		values.Set(key, string(raw))
	}
	return values, nil
}

func (t *Transport) BaseURL() *url.URL {
	return t.baseURL
}

// Cookie returns the value of the named cookie for the api host, or "".
func (t *Transport) Cookie(name string) string {
	for _, c := range t.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func (t *Transport) Cookies() []*http.Cookie {
	return t.http.GetClient().Jar.Cookies(t.baseURL)
}

// SetCookies restores cookies for the whole api host.
func (t *Transport) SetCookies(cookies []*http.Cookie) {
	restored := make([]*http.Cookie, len(cookies))
	for i, c := range cookies {
		restored[i] = &http.Cookie{
			Name:  c.Name,
			Value: c.Value,
			Path:  "/",
		}
	}
	t.http.GetClient().Jar.SetCookies(t.baseURL, restored)
}

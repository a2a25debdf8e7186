// Package instauto is a client for the private mobile API. A Client owns the
// session (cookies, identifiers, device profile) and hands out the action
// modules that submit requests through it.
package instauto

import (
	"context"
	"errors"
	"instauto/internal/components/chrono"
	"instauto/internal/components/telemetry"
	"instauto/pkg/instauto/actions"
	"instauto/pkg/instauto/actions/friendships"
	"instauto/pkg/instauto/actions/post"
	"instauto/pkg/instauto/actions/profile"
	"instauto/pkg/instauto/actions/search"
	"instauto/pkg/instauto/device"
	"instauto/pkg/instauto/signer"
	"instauto/pkg/instauto/transport"
	"time"

	"github.com/go-resty/resty/v2"
)

var (
	ErrLoadState   = errors.New("could not load state")
	ErrLoginFailed = errors.New("login failed")
)

type ClientOptions struct {
	Username string
	Password string

	// defaults to transport.DefaultBaseURL
	BaseURL string
	// defaults to post.DefaultUploadURL
	UploadURL string
	Timeout   time.Duration

	// a random known phone is picked when nil
	Device *device.Profile
	// defaults to device.DefaultAppProfile()
	App *device.AppProfile
	// a fresh state is generated when nil
	State *device.State

	Telemetry telemetry.API
	Chrono    chrono.API
	// writes every request/response pair, meant for debugging
	Dump telemetry.ExchangeOutput
}

// Client is not safe for concurrent use.
type Client struct {
	username string
	password string

	state     *device.State
	device    device.Profile
	app       device.AppProfile
	uploadURL string

	transport *transport.Transport
	chrono    chrono.API
	tel       telemetry.API
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.Telemetry == nil {
		opts.Telemetry = telemetry.SlogAPI{}
	}
	if opts.Chrono == nil {
		opts.Chrono = chrono.StandardImpl{}
	}

	app := device.DefaultAppProfile()
	if opts.App != nil {
		app = *opts.App
	}

	var phone device.Profile
	if opts.Device != nil {
		phone = *opts.Device
	} else {
		var err error
		phone, err = device.RandomProfile()
		if err != nil {
			return nil, err
		}
	}

	var state device.State
	if opts.State != nil {
		state = *opts.State
	} else {
		var err error
		state, err = device.NewState()
		if err != nil {
			return nil, err
		}
	}

	c := &Client{
		username:  opts.Username,
		password:  opts.Password,
		state:     &state,
		device:    phone,
		app:       app,
		uploadURL: opts.UploadURL,
		chrono:    opts.Chrono,
		tel:       telemetry.NewScopedAPI("instauto", opts.Telemetry),
	}

	tr, err := transport.New(transport.Options{
		BaseURL:   opts.BaseURL,
		Timeout:   opts.Timeout,
		App:       app,
		Device:    phone,
		State:     c.state,
		Signer:    signer.New(app.SignatureKey, app.SignatureKeyVersion),
		Chrono:    opts.Chrono,
		Telemetry: c.tel,
		Dump:      opts.Dump,
	})
	if err != nil {
		return nil, err
	}
	c.transport = tr

	return c, nil
}

func (c *Client) Do(ctx context.Context, req transport.Request) (*resty.Response, error) {
	return c.transport.Do(ctx, req)
}

// Session snapshots what actions need at submission, the csrf token comes
// from the cookie jar when the platform has set one.
func (c *Client) Session() actions.Session {
	csrf := c.transport.Cookie("csrftoken")
	if csrf == "" {
		csrf = c.state.CsrfToken
	}
	return actions.Session{
		CsrfToken: csrf,
		UserID:    c.state.UserID,
		UUID:      c.state.UUID,
		DeviceID:  c.state.DeviceID,
		SessionID: c.state.SessionID,
		Device:    c.device,
	}
}

func (c *Client) State() device.State {
	return *c.state
}

func (c *Client) Device() device.Profile {
	return c.device
}

func (c *Client) App() device.AppProfile {
	return c.app
}

func (c *Client) Post() post.Module {
	return post.New(c, post.Options{
		UploadURL: c.uploadURL,
		Chrono:    c.chrono,
		Telemetry: c.tel,
	})
}

func (c *Client) Friendships() friendships.Module {
	return friendships.New(c)
}

func (c *Client) Profile() profile.Module {
	return profile.New(c)
}

func (c *Client) Search() search.Module {
	return search.New(c, c.chrono)
}

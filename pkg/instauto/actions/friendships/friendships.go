// Package friendships follows, unfollows and manages follow requests.
package friendships

import (
	"context"
	"fmt"
	"instauto/pkg/instauto/actions"
	"instauto/pkg/instauto/transport"
	"net/http"
	"net/url"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

const defaultSurface = "follow_list_page"

// Change is a follow relationship change against a single user, the verb is
// picked by the Module method it is submitted through.
type Change struct {
	actions.Reserved
	UserID    string `json:"user_id"`
	RadioType string `json:"radio_type"`
	// filled at submission
	DeviceID string `json:"device_id,omitempty"`
}

func NewChange(userID string) (Change, error) {
	if err := actions.UserID("user_id", userID); err != nil {
		return Change{}, err
	}
	return Change{UserID: userID, RadioType: "wifi-none"}, nil
}

type Show struct {
	UserID string
}

func NewShow(userID string) (Show, error) {
	if err := actions.UserID("user_id", userID); err != nil {
		return Show{}, err
	}
	return Show{UserID: userID}, nil
}

// List is one page of followers or following of a user.
type List struct {
	UserID        string
	SearchSurface string
	RankToken     string
	Query         string
	// empty for the first page, next_max_id of the previous response after
	MaxID string
}

func NewList(userID string) (List, error) {
	if err := actions.UserID("user_id", userID); err != nil {
		return List{}, err
	}
	return List{
		UserID:        userID,
		SearchSurface: defaultSurface,
		RankToken:     uuid.NewString(),
	}, nil
}

func (l List) values() url.Values {
	values := url.Values{}
	values.Set("search_surface", l.SearchSurface)
	values.Set("rank_token", l.RankToken)
	if l.Query != "" {
		values.Set("query", l.Query)
	}
	if l.MaxID != "" {
		values.Set("max_id", l.MaxID)
	}
	return values
}

type Module struct {
	r actions.Requester
}

func New(r actions.Requester) Module {
	return Module{r: r}
}

func (m Module) change(ctx context.Context, verb string, obj Change) (*resty.Response, error) {
	session := m.r.Session()
	obj.Fill(session)
	obj.DeviceID = session.DeviceID
	return m.r.Do(ctx, transport.Request{
		Endpoint: fmt.Sprintf("friendships/%s/%s/", verb, obj.UserID),
		Method:   http.MethodPost,
		Data:     obj,
		Signed:   true,
	})
}

// Create follows the user.
func (m Module) Create(ctx context.Context, obj Change) (*resty.Response, error) {
	return m.change(ctx, "create", obj)
}

// Destroy unfollows the user.
func (m Module) Destroy(ctx context.Context, obj Change) (*resty.Response, error) {
	return m.change(ctx, "destroy", obj)
}

// Remove removes the user from the account's followers.
func (m Module) Remove(ctx context.Context, obj Change) (*resty.Response, error) {
	return m.change(ctx, "remove_follower", obj)
}

func (m Module) ApproveRequest(ctx context.Context, obj Change) (*resty.Response, error) {
	return m.change(ctx, "approve", obj)
}

func (m Module) IgnoreRequest(ctx context.Context, obj Change) (*resty.Response, error) {
	return m.change(ctx, "ignore", obj)
}

func (m Module) Show(ctx context.Context, obj Show) (*resty.Response, error) {
	return m.r.Do(ctx, transport.Request{
		Endpoint: fmt.Sprintf("friendships/show/%s/", obj.UserID),
		Method:   http.MethodGet,
	})
}

func (m Module) PendingRequests(ctx context.Context) (*resty.Response, error) {
	return m.r.Do(ctx, transport.Request{
		Endpoint: "friendships/pending/",
		Method:   http.MethodGet,
	})
}

func (m Module) GetFollowers(ctx context.Context, obj List) (*resty.Response, error) {
	return m.list(ctx, "followers", obj)
}

func (m Module) GetFollowing(ctx context.Context, obj List) (*resty.Response, error) {
	return m.list(ctx, "following", obj)
}

func (m Module) list(ctx context.Context, kind string, obj List) (*resty.Response, error) {
	return m.r.Do(ctx, transport.Request{
		Endpoint: fmt.Sprintf("friendships/%s/%s/", obj.UserID, kind),
		Method:   http.MethodGet,
		Query:    obj.values(),
	})
}

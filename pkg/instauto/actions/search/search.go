// Package search looks up users and hashtags by name.
package search

import (
	"context"
	"instauto/internal/components/chrono"
	"instauto/pkg/instauto/actions"
	"instauto/pkg/instauto/transport"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
)

// DefaultCount is the page size the app requests.
const DefaultCount = 30

type Username struct {
	Query string
	Count int
}

func NewUsername(query string, count int) (Username, error) {
	if err := actions.NotEmpty("q", strings.TrimSpace(query)); err != nil {
		return Username{}, err
	}
	if err := actions.Positive("count", count); err != nil {
		return Username{}, err
	}
	return Username{Query: query, Count: count}, nil
}

type Tag struct {
	Query string
	Count int
}

// NewTag accepts the tag with or without its leading '#'.
func NewTag(query string, count int) (Tag, error) {
	query = strings.TrimPrefix(strings.TrimSpace(query), "#")
	if err := actions.NotEmpty("q", query); err != nil {
		return Tag{}, err
	}
	if err := actions.Positive("count", count); err != nil {
		return Tag{}, err
	}
	return Tag{Query: query, Count: count}, nil
}

type Module struct {
	r      actions.Requester
	chrono chrono.API
}

// New creates the module, the clock is used for the timezone offset sent
// with user searches and defaults to the system clock.
func New(r actions.Requester, clock chrono.API) Module {
	if clock == nil {
		clock = chrono.StandardImpl{}
	}
	return Module{r: r, chrono: clock}
}

func (m Module) Username(ctx context.Context, obj Username) (*resty.Response, error) {
	_, offset := m.chrono.Now().Zone()
	return m.r.Do(ctx, transport.Request{
		Endpoint: "users/search/",
		Method:   http.MethodGet,
		Query: url.Values{
			"q":               []string{obj.Query},
			"count":           []string{strconv.Itoa(obj.Count)},
			"timezone_offset": []string{strconv.Itoa(offset)},
		},
	})
}

func (m Module) Tag(ctx context.Context, obj Tag) (*resty.Response, error) {
	return m.r.Do(ctx, transport.Request{
		Endpoint: "tags/search/",
		Method:   http.MethodGet,
		Query: url.Values{
			"q":     []string{obj.Query},
			"count": []string{strconv.Itoa(obj.Count)},
		},
	})
}

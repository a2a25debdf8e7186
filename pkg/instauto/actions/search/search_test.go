package search

import (
	"context"
	"instauto/internal/components/chrono"
	"instauto/pkg/instauto/actions"
	"instauto/pkg/instauto/actions/actionstest"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	_, err := NewUsername("  ", 0)
	require.ErrorIs(t, err, actions.ErrValidation)
	_, err = NewUsername("alice", -1)
	require.ErrorIs(t, err, actions.ErrValidation)

	_, err = NewUsername("alice", 0)
	require.ErrorIs(t, err, actions.ErrValidation)
	_, err = NewTag("golang", 0)
	require.ErrorIs(t, err, actions.ErrValidation)

	u, err := NewUsername(" alice ", DefaultCount)
	require.NoError(t, err)
	require.Equal(t, Username{Query: " alice ", Count: 30}, u)

	tag, err := NewTag("#golang", 5)
	require.NoError(t, err)
	require.Equal(t, Tag{Query: "golang", Count: 5}, tag)

	_, err = NewTag("#", 5)
	require.ErrorIs(t, err, actions.ErrValidation)
}

func TestSearch(t *testing.T) {
	r := actionstest.New(t)
	zone := time.FixedZone("CET", 3600)
	m := New(r, chrono.FixedImpl{Time: actionstest.Time.In(zone)})

	u, err := NewUsername("alice", 10)
	require.NoError(t, err)
	_, err = m.Username(context.Background(), u)
	require.NoError(t, err)

	tag, err := NewTag("golang", DefaultCount)
	require.NoError(t, err)
	_, err = m.Tag(context.Background(), tag)
	require.NoError(t, err)

	reqs := r.Requests()
	require.Equal(t, http.MethodGet, reqs[0].Method)
	require.Equal(t, "/api/v1/users/search/", reqs[0].Path)
	require.Equal(t, "alice", reqs[0].Query.Get("q"))
	require.Equal(t, "10", reqs[0].Query.Get("count"))
	require.Equal(t, "3600", reqs[0].Query.Get("timezone_offset"))

	require.Equal(t, "/api/v1/tags/search/", reqs[1].Path)
	require.Equal(t, "golang", reqs[1].Query.Get("q"))
	require.Equal(t, "30", reqs[1].Query.Get("count"))
	require.False(t, reqs[1].Query.Has("timezone_offset"))
}

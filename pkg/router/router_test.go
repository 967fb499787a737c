package router_test

import (
	"testing"

	"github.com/delaneyj/domwire/pkg/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemory() *router.Memory {
	return router.NewMemory(
		router.StateConfig{Name: "home", URL: "/", Views: map[string]string{"main": "home"}},
		router.StateConfig{Name: "user", URL: "/users/:id", Views: map[string]string{"main": "user"}},
		router.StateConfig{Name: "post", URL: "/users/:id/posts/:post"},
	)
}

func TestUri(t *testing.T) {
	r := newMemory()
	assert.Equal(t, "/users/7", r.Uri("user", map[string]any{"id": 7}))
	assert.Equal(t, "/users/a%20b?tab=info", r.Uri("user", map[string]any{"id": "a b", "tab": "info"}))
	assert.Equal(t, "/users/", r.Uri("user", nil))
	assert.Equal(t, "", r.Uri("missing", nil))
}

func TestGo(t *testing.T) {
	r := newMemory()
	var seen []string
	r.CurrentState().Changed().Subscribe(func(st router.State) error {
		seen = append(seen, st.Name)
		return nil
	})

	require.NoError(t, r.Go("user", map[string]any{"id": 1}, router.GoOptions{Replace: true}))
	st := r.CurrentState().Value()
	assert.Equal(t, "user", st.Name)
	assert.Equal(t, "/users/1", st.URL)
	assert.Equal(t, "user", st.Views["main"])
	assert.True(t, st.Replace)
	assert.Equal(t, 1, st.Param("id"))
	assert.Nil(t, st.Param("nope"))

	require.NoError(t, r.Go("home", nil, router.GoOptions{}))
	assert.Equal(t, []string{"user", "home"}, seen)

	assert.Error(t, r.Go("missing", nil, router.GoOptions{}))
	assert.Equal(t, "home", r.CurrentState().Value().Name)
}

func TestGoURL(t *testing.T) {
	r := newMemory()
	require.NoError(t, r.GoURL("/users/3/posts/9?sort=new&id=ignored", router.GoOptions{}))
	st := r.CurrentState().Value()
	assert.Equal(t, "post", st.Name)
	assert.Equal(t, map[string]any{"id": "3", "post": "9", "sort": "new"}, st.Params)

	require.NoError(t, r.GoURL("/", router.GoOptions{}))
	assert.Equal(t, "home", r.CurrentState().Value().Name)

	assert.Error(t, r.GoURL("/nowhere/at/all", router.GoOptions{}))
}

func TestStateNames(t *testing.T) {
	r := newMemory().Register(router.StateConfig{Name: "about", URL: "/about"})
	assert.Equal(t, []string{"about", "home", "post", "user"}, r.StateNames())
}

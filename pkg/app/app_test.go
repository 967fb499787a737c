package app_test

import (
	"bytes"
	"log"
	"testing"

	"github.com/delaneyj/domwire/pkg/app"
	"github.com/delaneyj/domwire/pkg/config"
	"github.com/delaneyj/domwire/pkg/dom"
	"github.com/delaneyj/domwire/pkg/property"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	a, err := app.New(nil)
	require.NoError(t, err)
	assert.Equal(t, "data-bind", a.Manager.Attribute())
	assert.Nil(t, a.Router)
	assert.Contains(t, a.Registry.Root().HandlerNames(), "foreach")
}

func TestUnknownHandlerInConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.Handlers["nope"] = map[string]any{"priority": 1}
	_, err := app.New(cfg)
	assert.ErrorContains(t, err, `"nope"`)
}

// errors raised after setup are logged by default
func TestLogsLateErrors(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Defaults()
	cfg.Attribute = "data-wire"
	cfg.Verbose = true
	a, err := app.New(cfg, app.WithLogger(log.New(&buf, "", 0)))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `binding attribute "data-wire"`)

	n := property.New(1)
	body, err := dom.ParseBody(`<input id="i" data-wire="textInput: n">`)
	require.NoError(t, err)
	require.NoError(t, a.ApplyBindings(map[string]any{"n": n}, body))

	body.GetElementByID("i").Input("x")
	assert.Contains(t, buf.String(), "cannot assign string")

	st := a.Stats()
	assert.Equal(t, 1, st.Bound)
	a.Clean(body)
	assert.Zero(t, a.Stats().Bound)
}

package command_test

import (
	"fmt"
	"testing"

	"github.com/delaneyj/domwire/pkg/command"
	"github.com/delaneyj/domwire/pkg/errors"
	"github.com/delaneyj/domwire/pkg/rx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute(t *testing.T) {
	c := command.New(func(p any) (any, error) { return fmt.Sprint("did ", p), nil })
	var results []any
	c.Results().Subscribe(func(v any) error {
		results = append(results, v)
		return nil
	})
	require.NoError(t, c.Execute(1))
	require.NoError(t, c.Execute("x"))
	assert.Equal(t, []any{"did 1", "did x"}, results)
}

func TestExecuteFailure(t *testing.T) {
	boom := fmt.Errorf("boom")
	c := command.New(func(any) (any, error) { return nil, boom })
	var errs []error
	c.Errors().Subscribe(func(err error) error {
		errs = append(errs, err)
		return nil
	})
	assert.Same(t, boom, c.Execute(nil))
	assert.Equal(t, []error{boom}, errs)
	assert.False(t, c.IsExecuting().Value())
}

func TestExecuteRecoversPanics(t *testing.T) {
	c := command.Action(func(any) { panic("oops") })
	err := c.Execute(nil)
	var p *errors.PanicError
	require.ErrorAs(t, err, &p)
	assert.Equal(t, "oops", p.Value)
	assert.True(t, c.CanExecute(nil))
}

func TestCanExecuteGate(t *testing.T) {
	gate := rx.NewSubject[bool]()
	ran := 0
	c := command.Action(func(any) { ran++ }, command.WithCanExecute(gate))

	var states []bool
	c.CanExecuteObservable().Subscribe(func(ok bool) error {
		states = append(states, ok)
		return nil
	})
	gate.Next(false)
	gate.Next(false)
	require.NoError(t, c.Execute(nil))
	gate.Next(true)
	require.NoError(t, c.Execute(nil))

	assert.Equal(t, 1, ran)
	assert.Equal(t, []bool{true, false, true, false, true}, states)
}

func TestCanExecuteFunc(t *testing.T) {
	var got []any
	c := command.Action(func(p any) { got = append(got, p) },
		command.WithCanExecuteFunc(func(p any) bool { return p != nil }))
	assert.False(t, c.CanExecute(nil))
	assert.True(t, c.CanExecute(2))
	require.NoError(t, c.Execute(nil))
	require.NoError(t, c.Execute(2))
	assert.Equal(t, []any{2}, got)
}

// a command cannot run again while it is running
func TestNoReentry(t *testing.T) {
	var c *command.Command
	depth := 0
	c = command.Action(func(any) {
		depth++
		assert.True(t, c.IsExecuting().Value())
		assert.False(t, c.CanExecute(nil))
		_ = c.Execute(nil)
	})
	require.NoError(t, c.Execute(nil))
	assert.Equal(t, 1, depth)
}

func TestDispose(t *testing.T) {
	ran := 0
	c := command.Action(func(any) { ran++ })
	var last bool
	c.CanExecuteObservable().Subscribe(func(ok bool) error {
		last = ok
		return nil
	})
	assert.True(t, last)

	c.Dispose()
	c.Dispose()
	assert.False(t, last)
	assert.False(t, c.CanExecute(nil))
	require.NoError(t, c.Execute(nil))
	assert.Zero(t, ran)
}

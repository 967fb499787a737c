// Package command implements commands: executable actions with a derived
// can-execute state and streams of results and failures.
package command

import (
	"github.com/delaneyj/domwire/pkg/errors"
	"github.com/delaneyj/domwire/pkg/property"
	"github.com/delaneyj/domwire/pkg/rx"
)

// ExecuteFunc runs a command.
type ExecuteFunc func(param any) (any, error)

type Command struct {
	execute ExecuteFunc

	predicate func(param any) bool
	gate      rx.Observable[bool]
	gateOpen  bool
	gateSub   rx.Disposable

	executing *property.Property[bool]
	state     *rx.Subject[bool]
	results   *rx.Subject[any]
	errs      *rx.Subject[error]
	disposed  bool
}

type Option func(*Command)

// WithCanExecute gates the command on the latest value of can. The command
// is executable until can first emits.
func WithCanExecute(can rx.Observable[bool]) Option {
	return func(c *Command) { c.gate = can }
}

// WithCanExecuteFunc gates the command on a predicate over its parameter.
func WithCanExecuteFunc(fn func(param any) bool) Option {
	return func(c *Command) { c.predicate = fn }
}

// WithSink routes errors raised by subscribers of the command's streams.
func WithSink(sink errors.Sink) Option {
	return func(c *Command) {
		c.state.SetSink(sink)
		c.results.SetSink(sink)
		c.errs.SetSink(sink)
		c.executing.SetSink(sink)
	}
}

func New(execute ExecuteFunc, opts ...Option) *Command {
	c := &Command{
		execute:   execute,
		gateOpen:  true,
		executing: property.New(false),
		state:     rx.NewSubject[bool](),
		results:   rx.NewSubject[any](),
		errs:      rx.NewSubject[error](),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.gate != nil {
		c.gateSub = c.gate.Subscribe(func(open bool) error {
			c.gateOpen = open
			c.state.Next(c.CanExecute(nil))
			return nil
		})
	}
	return c
}

// Action is a command that runs fn and produces no result.
func Action(fn func(param any), opts ...Option) *Command {
	return New(func(param any) (any, error) {
		fn(param)
		return nil, nil
	}, opts...)
}

// CanExecute reports whether Execute(param) would run.
func (c *Command) CanExecute(param any) bool {
	if c.disposed || c.executing.Value() || !c.gateOpen {
		return false
	}
	return c.predicate == nil || c.predicate(param)
}

// CanExecuteObservable emits CanExecute(nil) on subscription and whenever it
// changes. It is false while the command runs.
func (c *Command) CanExecuteObservable() rx.Observable[bool] {
	return rx.DistinctUntilChanged[bool](rx.Func[bool](func(fn func(bool) error) rx.Disposable {
		rx.Deliver(nil, "command.CanExecute", fn, c.CanExecute(nil))
		return c.state.Subscribe(fn)
	}))
}

// IsExecuting is true while Execute runs.
func (c *Command) IsExecuting() *property.Property[bool] {
	return c.executing
}

// Results emits the value of every successful execution.
func (c *Command) Results() rx.Observable[any] {
	return c.results
}

// Errors emits the error of every failed execution.
func (c *Command) Errors() rx.Observable[error] {
	return c.errs
}

// Execute runs the command if it can execute. The error of a failed run is
// returned and emitted on Errors.
func (c *Command) Execute(param any) (err error) {
	if !c.CanExecute(param) {
		return nil
	}
	c.setExecuting(true)
	defer func() {
		if r := recover(); r != nil {
			err = &errors.PanicError{Op: "command.Execute", Value: r, StackTrace: errors.CaptureStack()}
		}
		c.setExecuting(false)
		if err != nil {
			c.errs.Next(err)
		}
	}()

	v, err := c.execute(param)
	if err != nil {
		return err
	}
	c.results.Next(v)
	return nil
}

func (c *Command) setExecuting(on bool) {
	_ = c.executing.SetValue(on)
	c.state.Next(c.CanExecute(nil))
}

// Dispose releases the can-execute source and completes every stream.
func (c *Command) Dispose() {
	if c.disposed {
		return
	}
	c.disposed = true
	if c.gateSub != nil {
		c.gateSub.Dispose()
	}
	c.state.Next(false)
	c.state.Complete()
	c.results.Complete()
	c.errs.Complete()
	c.executing.Dispose()
}

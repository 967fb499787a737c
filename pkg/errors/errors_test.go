package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/delaneyj/domwire/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("applying: %w", errors.Binding("expr", "user.name", "unknown member %q", "name"))
	assert.Equal(t, errors.KindBinding, errors.KindOf(err))
	assert.True(t, errors.Is(err, errors.KindBinding))
	assert.False(t, errors.Is(err, errors.KindValidation))
	assert.Contains(t, err.Error(), `"user.name"`)
}

func TestIsSearchesJoinedErrors(t *testing.T) {
	err := stderrors.Join(
		errors.Validation("handlers.checked", "not an input"),
		errors.New("handlers.text", errors.KindParse, "bad"),
	)
	assert.True(t, errors.Is(err, errors.KindValidation))
	assert.True(t, errors.Is(err, errors.KindParse))
	assert.False(t, errors.Is(err, errors.KindReadOnly))
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, errors.Wrap("op", errors.KindBinding, nil))
}

func TestReportUsesDefaultSink(t *testing.T) {
	var got []error
	errors.SetDefaultSink(errors.SinkFunc(func(err error) {
		got = append(got, err)
	}))
	defer errors.SetDefaultSink(nil)

	errors.Report(nil, stderrors.New("boom"))
	errors.Report(nil, nil)
	assert.Len(t, got, 1)
}

func TestRecoverReportsPanic(t *testing.T) {
	var got error
	sink := errors.SinkFunc(func(err error) { got = err })

	func() {
		defer errors.Recover("test.op", sink)
		panic("kaboom")
	}()

	assert.Equal(t, errors.KindPanic, errors.KindOf(got))
	assert.Contains(t, got.Error(), "test.op")
	assert.Contains(t, got.Error(), "kaboom")
}

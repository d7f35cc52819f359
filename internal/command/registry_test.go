// ABOUTME: Tests for the command registry and dispatcher
// ABOUTME: Covers lookup, containment of failures, and catalog rendering

package command

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Execute_Success(t *testing.T) {
	reg := NewRegistry(nil)
	reg.Register(Registration{
		Name:        "echo",
		Description: "Echo the text parameter back",
		Params:      []string{"text"},
		Handler: func(_ context.Context, params map[string]string) (string, error) {
			return params["text"], nil
		},
	})

	res := reg.Execute(context.Background(), Command{
		Name:       "echo",
		Parameters: map[string]string{"text": "hello"},
	})

	assert.True(t, res.OK())
	assert.Equal(t, ResultOK, res.Kind)
	assert.Equal(t, "hello", res.Text())
}

func TestRegistry_Execute_NotFound(t *testing.T) {
	reg := NewRegistry(nil)

	// Must return a result, never panic or error out.
	res := reg.Execute(context.Background(), Command{Name: "launch_missiles"})

	assert.Equal(t, ResultNotFound, res.Kind)
	assert.False(t, res.OK())
	assert.Contains(t, res.Text(), "launch_missiles")
	assert.Contains(t, res.Text(), "not available")
}

func TestRegistry_Execute_HandlerError(t *testing.T) {
	reg := NewRegistry(nil)
	reg.Register(Registration{
		Name: "broken",
		Handler: func(context.Context, map[string]string) (string, error) {
			return "", errors.New("upstream unavailable")
		},
	})

	res := reg.Execute(context.Background(), Command{Name: "broken"})

	assert.Equal(t, ResultFailed, res.Kind)
	assert.Contains(t, res.Text(), "upstream unavailable")
}

func TestRegistry_Execute_HandlerPanic(t *testing.T) {
	reg := NewRegistry(nil)
	reg.Register(Registration{
		Name: "explosive",
		Handler: func(context.Context, map[string]string) (string, error) {
			panic("boom")
		},
	})

	var res Result
	require.NotPanics(t, func() {
		res = reg.Execute(context.Background(), Command{Name: "explosive"})
	})
	assert.Equal(t, ResultFailed, res.Kind)
	assert.Contains(t, res.Text(), "explosive")
}

func TestRegistry_Register_LastWins(t *testing.T) {
	reg := NewRegistry(nil)
	reg.Register(Registration{
		Name: "greet",
		Handler: func(context.Context, map[string]string) (string, error) {
			return "first", nil
		},
	})
	reg.Register(Registration{
		Name: "greet",
		Handler: func(context.Context, map[string]string) (string, error) {
			return "second", nil
		},
	})

	res := reg.Execute(context.Background(), Command{Name: "greet"})
	assert.Equal(t, "second", res.Text())
}

func TestRegistry_Exists(t *testing.T) {
	reg := NewRegistry(nil)
	assert.False(t, reg.Exists("ping"))

	reg.Register(Registration{
		Name: "ping",
		Handler: func(context.Context, map[string]string) (string, error) {
			return "pong", nil
		},
	})
	assert.True(t, reg.Exists("ping"))
	assert.False(t, reg.Exists("pong"))
}

func TestRegistry_Describe(t *testing.T) {
	reg := NewRegistry(nil)
	assert.Empty(t, reg.Describe())

	noop := func(context.Context, map[string]string) (string, error) { return "", nil }
	reg.Register(Registration{
		Name:        "current_weather",
		Description: "Current weather and temperature in a city",
		Params:      []string{"city"},
		Handler:     noop,
	})
	reg.Register(Registration{
		Name:        "current_weather_by_coords",
		Description: "Current weather at coordinates",
		Params:      []string{"latitude", "longitude"},
		Handler:     noop,
	})

	catalog := reg.Describe()
	assert.Contains(t, catalog, "current_weather(city): Current weather and temperature in a city")
	assert.Contains(t, catalog, "current_weather_by_coords(latitude, longitude)")
}

func TestRegistry_Names_Sorted(t *testing.T) {
	reg := NewRegistry(nil)
	noop := func(context.Context, map[string]string) (string, error) { return "", nil }
	for _, name := range []string{"zeta", "alpha", "mid"} {
		reg.Register(Registration{Name: name, Handler: noop})
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, reg.Names())
}

func TestRegistry_ConcurrentExecute(t *testing.T) {
	reg := NewRegistry(nil)
	reg.Register(Registration{
		Name: "count",
		Handler: func(_ context.Context, params map[string]string) (string, error) {
			return params["n"], nil
		},
	})

	done := make(chan struct{})
	for i := 0; i < 20; i++ {
		go func(n int) {
			defer func() { done <- struct{}{} }()
			res := reg.Execute(context.Background(), Command{
				Name:       "count",
				Parameters: map[string]string{"n": fmt.Sprint(n)},
			})
			assert.True(t, res.OK())
		}(i)
	}
	for i := 0; i < 20; i++ {
		<-done
	}
}

package di

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closeRecorder struct {
	name string
	log  *[]string
	err  error
}

func (c *closeRecorder) Close() error {
	*c.log = append(*c.log, c.name)
	return c.err
}

func TestContainerRegisterAndGet(t *testing.T) {
	c := NewContainer()
	c.Register("a", 1)
	c.Register("b", "two")
	c.Register("a", 3)

	assert.Equal(t, 3, c.Get("a"))
	assert.Nil(t, c.Get("missing"))
	assert.True(t, c.Has("b"))
	assert.Equal(t, []string{"a", "b"}, c.GetNames())

	c.Remove("a")
	assert.False(t, c.Has("a"))
	assert.Equal(t, []string{"b"}, c.GetNames())

	c.Clear()
	assert.Empty(t, c.GetNames())
}

func TestResolve(t *testing.T) {
	c := NewContainer()
	c.Register("name", "value")

	got, err := Resolve[string](c, "name")
	require.NoError(t, err)
	assert.Equal(t, "value", got)

	_, err = Resolve[int](c, "name")
	assert.ErrorContains(t, err, "has type string")

	_, err = Resolve[string](c, "missing")
	assert.ErrorContains(t, err, "not registered")
}

func TestCloseInReverseOrder(t *testing.T) {
	var log []string
	boom := errors.New("boom")

	c := NewContainer()
	c.Register("first", &closeRecorder{name: "first", log: &log})
	c.Register("plain", 42)
	c.Register("second", &closeRecorder{name: "second", log: &log, err: boom})

	err := c.Close()
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"second", "first"}, log)
}

func TestGetContainerIsSingleton(t *testing.T) {
	assert.Same(t, GetContainer(), GetContainer())
}

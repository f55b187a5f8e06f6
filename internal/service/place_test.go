package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenflash/greenflash/internal/model"
)

func TestPlaceSave(t *testing.T) {
	e := newEnv(t)
	alice := e.signup(t, "alice")
	bob := e.signup(t, "bob")

	in := PlaceInput{ID: "p1", Name: "Joe's Garage", Category: "autorepair", Rating: 4.5}

	t.Run("anonymous is not added", func(t *testing.T) {
		got, err := e.places.Save("", in)
		require.NoError(t, err)
		assert.Equal(t, model.PlaceNotAdded, got)
		assert.Equal(t, 0, count(t, e.db, `SELECT COUNT(*) FROM places`))
	})

	got, err := e.places.Save(alice, in)
	require.NoError(t, err)
	assert.Equal(t, model.PlaceAdded, got)

	got, err = e.places.Save(alice, in)
	require.NoError(t, err)
	assert.Equal(t, model.PlaceAlreadySaved, got)

	got, err = e.places.Save(bob, in)
	require.NoError(t, err)
	assert.Equal(t, model.PlaceAdded, got)

	assert.Equal(t, 1, count(t, e.db, `SELECT COUNT(*) FROM places`))
	assert.Equal(t, 2, count(t, e.db, `SELECT COUNT(*) FROM user_places`))

	places, err := e.places.Places(alice)
	require.NoError(t, err)
	require.Len(t, places, 1)
	assert.Equal(t, "Joe's Garage", places[0].Name)
	assert.Equal(t, 4.5, places[0].Rating)
}

func TestPlaceRemove(t *testing.T) {
	e := newEnv(t)
	alice := e.signup(t, "alice")
	bob := e.signup(t, "bob")

	in := PlaceInput{ID: "p1", Name: "Joe's Garage"}
	_, err := e.places.Save(alice, in)
	require.NoError(t, err)
	_, err = e.places.Save(bob, in)
	require.NoError(t, err)

	assert.ErrorIs(t, e.places.Remove(alice, "missing"), ErrNotFound)

	require.NoError(t, e.places.Remove(alice, "p1"))

	n, err := e.places.Count(alice)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = e.places.Count(bob)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// the catalog entry outlives the bookmark
	assert.Equal(t, 1, count(t, e.db, `SELECT COUNT(*) FROM places`))
}

package service

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenflash/greenflash/internal/model"
	"github.com/greenflash/greenflash/internal/validation"
)

func mileage(n int64) *int64 { return &n }

func TestLedgerCreate(t *testing.T) {
	e := newEnv(t)
	alice := e.signup(t, "alice")

	t.Run("shared location resolves once", func(t *testing.T) {
		_, err := e.logs.Create(alice, EntryInput{Title: "Oil", Location: "Austin, TX", Body: "changed", Date: "2024-03-01"}, nil)
		require.NoError(t, err)
		_, err = e.maintenance.Create(alice, EntryInput{Title: "Tires", Location: "Austin, TX", Body: "rotated", Date: "2024-03-02"}, nil)
		require.NoError(t, err)

		assert.Equal(t, 1, count(t, e.db, `SELECT COUNT(*) FROM locations WHERE label = $1`, "Austin, TX"))
	})

	t.Run("empty location stores no location", func(t *testing.T) {
		before := count(t, e.db, `SELECT COUNT(*) FROM locations`)

		log, err := e.logs.Create(alice, EntryInput{Title: "Trip", Body: "drove", Date: "2024-03-03", Mileage: mileage(1200)}, nil)
		require.NoError(t, err)
		assert.Nil(t, log.LocationID)
		assert.Equal(t, before, count(t, e.db, `SELECT COUNT(*) FROM locations`))
	})

	t.Run("maintenance requires location", func(t *testing.T) {
		_, err := e.maintenance.Create(alice, EntryInput{Title: "Brakes", Body: "pads", Date: "2024-03-04"}, nil)
		var verrs validation.Errors
		require.True(t, errors.As(err, &verrs))
		assert.NotEmpty(t, verrs.Get("location"))
	})

	t.Run("invalid date", func(t *testing.T) {
		_, err := e.logs.Create(alice, EntryInput{Title: "x", Body: "y", Date: "03/04/2024"}, nil)
		var verrs validation.Errors
		require.True(t, errors.As(err, &verrs))
		assert.NotEmpty(t, verrs.Get("date"))
	})

	t.Run("ledgers are separate", func(t *testing.T) {
		logs, err := e.logs.All(alice)
		require.NoError(t, err)
		maint, err := e.maintenance.All(alice)
		require.NoError(t, err)
		assert.Len(t, logs, 2)
		assert.Len(t, maint, 1)
	})
}

func TestLedgerOwnership(t *testing.T) {
	e := newEnv(t)
	alice := e.signup(t, "alice")
	bob := e.signup(t, "bob")

	log, err := e.logs.Create(alice, EntryInput{Title: "Oil", Location: "Austin, TX", Body: "changed", Date: "2024-03-01"}, nil)
	require.NoError(t, err)

	_, err = e.logs.Read(bob, log.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = e.logs.Edit(bob, log.ID, EntryInput{Title: "Hacked", Body: "x", Date: "2024-01-01"}, nil)
	assert.ErrorIs(t, err, ErrUnauthorized)

	assert.ErrorIs(t, e.logs.Delete(bob, log.ID), ErrUnauthorized)

	// a maintenance id is not a log id
	_, err = e.maintenance.Read(alice, log.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)

	got, err := e.logs.Read(alice, log.ID)
	require.NoError(t, err)
	assert.Equal(t, "Oil", got.Title)
	assert.Equal(t, "Austin, TX", got.Location)
}

func TestLedgerEdit(t *testing.T) {
	e := newEnv(t)
	alice := e.signup(t, "alice")

	rec, err := e.maintenance.Create(alice, EntryInput{Title: "Oil", Location: "Austin, TX", Body: "5w30", Date: "2024-03-01"}, upload("old.png", "old"))
	require.NoError(t, err)
	assert.Equal(t, []string{rec.ImageName}, e.mediaFiles(t, alice))

	edited, err := e.maintenance.Edit(alice, rec.ID, EntryInput{
		Title:    "Oil change",
		Location: "Dallas, TX",
		Mileage:  mileage(42000),
		Body:     "0w20",
		Date:     "2024-04-01",
	}, upload("new.png", "new"))
	require.NoError(t, err)

	got, err := e.maintenance.Read(alice, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Oil change", got.Title)
	assert.Equal(t, "Dallas, TX", got.Location)
	assert.Equal(t, int64(42000), *got.Mileage)
	assert.Equal(t, "0w20", got.Body)
	assert.Equal(t, "2024-04-01", got.Date.Format(DateLayout))
	assert.True(t, strings.HasSuffix(got.ImageName, "_new.png"), got.ImageName)
	assert.Equal(t, edited.ImageURL, got.ImageURL)

	assert.Equal(t, []string{got.ImageName}, e.mediaFiles(t, alice))

	t.Run("invalid edit changes nothing", func(t *testing.T) {
		_, err := e.maintenance.Edit(alice, rec.ID, EntryInput{Title: "", Location: "Waco, TX", Body: "x", Date: "2024-05-01"}, upload("third.png", "3"))
		require.Error(t, err)

		after, err := e.maintenance.Read(alice, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, "Oil change", after.Title)
		assert.Equal(t, got.ImageName, after.ImageName)
		assert.Equal(t, []string{got.ImageName}, e.mediaFiles(t, alice))
	})
}

func TestLedgerDelete(t *testing.T) {
	e := newEnv(t)
	alice := e.signup(t, "alice")

	rec, err := e.logs.Create(alice, EntryInput{Title: "Oil", Body: "changed", Date: "2024-03-01"}, upload("pic.jpg", "jpg"))
	require.NoError(t, err)

	require.NoError(t, e.logs.Delete(alice, rec.ID))
	assert.Empty(t, e.mediaFiles(t, alice))

	_, err = e.logs.Read(alice, rec.ID)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestLedgerImagesWithSameName(t *testing.T) {
	e := newEnv(t)
	alice := e.signup(t, "alice")

	log, err := e.logs.Create(alice, EntryInput{Title: "Trip", Body: "b", Date: "2024-03-01"}, upload("car.jpg", "AAA"))
	require.NoError(t, err)
	maint, err := e.maintenance.Create(alice, EntryInput{Title: "Oil", Location: "Austin, TX", Body: "b", Date: "2024-03-02"}, upload("car.jpg", "BBB"))
	require.NoError(t, err)

	assert.NotEqual(t, log.ImageName, maint.ImageName)
	assert.ElementsMatch(t, []string{log.ImageName, maint.ImageName}, e.mediaFiles(t, alice))

	data, err := os.ReadFile(filepath.Join(e.mediaRoot, alice, log.ImageName))
	require.NoError(t, err)
	assert.Equal(t, "AAA", string(data))

	require.NoError(t, e.maintenance.Delete(alice, maint.ID))
	assert.Equal(t, []string{log.ImageName}, e.mediaFiles(t, alice))

	t.Run("profile photo is kept apart", func(t *testing.T) {
		require.NoError(t, e.users.SetImage(alice, upload("car.jpg", "CCC")))
		user, err := e.users.ByID(alice)
		require.NoError(t, err)
		assert.NotEqual(t, log.ImageName, user.ImageName)

		require.NoError(t, e.logs.Delete(alice, log.ID))
		assert.Equal(t, []string{user.ImageName}, e.mediaFiles(t, alice))
	})
}

func TestLedgerRecent(t *testing.T) {
	e := newEnv(t)
	alice := e.signup(t, "alice")

	dates := []string{"2024-01-03", "2024-01-07", "2024-01-01", "2024-01-05", "2024-01-02", "2024-01-06", "2024-01-04"}
	for _, d := range dates {
		_, err := e.logs.Create(alice, EntryInput{Title: d, Body: "b", Date: d}, nil)
		require.NoError(t, err)
	}

	recent, err := e.logs.Recent(alice)
	require.NoError(t, err)
	require.Len(t, recent, RecentLimit)

	var got []string
	for _, entry := range Entries(recent) {
		got = append(got, entry.Title)
	}
	assert.Equal(t, []string{"2024-01-07", "2024-01-06", "2024-01-05", "2024-01-04", "2024-01-03"}, got)

	all, err := e.logs.All(alice)
	require.NoError(t, err)
	assert.Len(t, all, len(dates))
	assert.Equal(t, model.KindLog, e.logs.Kind())
}

package service

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/greenflash/greenflash/internal/repository"
	"github.com/greenflash/greenflash/internal/storage"
	"github.com/greenflash/greenflash/internal/testutil"
)

type env struct {
	db          *sqlx.DB
	mediaRoot   string
	auth        *AuthService
	users       *UserService
	places      *PlaceService
	logs        *LogService
	maintenance *MaintenanceService
	locations   *LocationService
}

func newEnv(t *testing.T) *env {
	t.Helper()

	database := testutil.NewDB(t)
	root := filepath.Join(t.TempDir(), "images")
	local, err := storage.NewLocalStorage(root, "/static/images")
	require.NoError(t, err)

	media := NewMediaService(local)
	email := NewEmailService("", "noreply@example.com", "http://localhost", "Greenflash", true)
	userRepo := repository.NewUserRepository(database)
	locations := NewLocationService(repository.NewLocationRepository(database))

	return &env{
		db:          database,
		mediaRoot:   root,
		auth:        NewAuthService(userRepo, email, "test-secret", time.Hour, false),
		users:       NewUserService(userRepo, media, email),
		places:      NewPlaceService(database, repository.NewPlaceRepository(database)),
		logs:        NewLogService(database, repository.NewLogRepository(database), locations, media),
		maintenance: NewMaintenanceService(database, repository.NewMaintenanceRepository(database), locations, media),
		locations:   locations,
	}
}

func (e *env) signup(t *testing.T, username string) string {
	t.Helper()
	user, err := e.auth.Signup(username, "pw-"+username, username+"@example.com")
	require.NoError(t, err)
	return user.ID
}

func upload(name, content string) *Upload {
	return &Upload{Filename: name, Size: int64(len(content)), Content: strings.NewReader(content)}
}

func (e *env) mediaFiles(t *testing.T, userID string) []string {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(e.mediaRoot, userID))
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)

	var names []string
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

func count(t *testing.T, database *sqlx.DB, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, database.Get(&n, query, args...))
	return n
}

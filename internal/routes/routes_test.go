package routes

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenflash/greenflash/internal/app"
	"github.com/greenflash/greenflash/internal/config"
	"github.com/greenflash/greenflash/internal/storage"
	"github.com/greenflash/greenflash/internal/testutil"
)

type testServer struct {
	*httptest.Server
	mediaRoot string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer KEY" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"businesses":[{"id":"b1","name":"`+r.URL.Query().Get("term")+` in `+r.URL.Query().Get("location")+`"}]}`)
	}))
	t.Cleanup(provider.Close)

	mediaRoot := filepath.Join(t.TempDir(), "images")
	cfg := &config.Config{
		AppName:        "Greenflash",
		AppEnv:         "development",
		AppURL:         "http://localhost",
		SessionSecret:  "test-secret",
		SessionExpiry:  time.Hour,
		AuthRateLimit:  1000,
		AuthRateWindow: time.Minute,
		SearchAPIURL:   provider.URL,
		SearchAPIKey:   "KEY",
		StorageDriver:  config.StorageLocal,
		MediaPath:      mediaRoot,
		MediaURL:       "/static/images",
		UploadMaxSize:  1 << 20,
	}

	local, err := storage.NewLocalStorage(cfg.MediaPath, cfg.MediaURL)
	require.NoError(t, err)

	srv := httptest.NewServer(SetupRoutes(app.Wire(cfg, testutil.NewDB(t), local)))
	t.Cleanup(srv.Close)

	return &testServer{Server: srv, mediaRoot: mediaRoot}
}

// client is one browser: it keeps cookies and does not follow redirects.
type client struct {
	t    *testing.T
	base string
	http *http.Client
}

func (s *testServer) client(t *testing.T) *client {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	c := &client{
		t:    t,
		base: s.URL,
		http: &http.Client{
			Jar: jar,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
	c.get("/login")
	return c
}

func (c *client) cookie(name string) string {
	u, _ := url.Parse(c.base)
	for _, ck := range c.http.Jar.Cookies(u) {
		if ck.Name == name {
			return ck.Value
		}
	}
	return ""
}

func (c *client) do(req *http.Request) (*http.Response, string) {
	c.t.Helper()
	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp, string(body)
}

func (c *client) get(path string) (*http.Response, string) {
	req, err := http.NewRequest(http.MethodGet, c.base+path, nil)
	require.NoError(c.t, err)
	return c.do(req)
}

func (c *client) postForm(path string, values url.Values) (*http.Response, string) {
	if values == nil {
		values = url.Values{}
	}
	values.Set("csrf_token", c.cookie("csrf_token"))

	req, err := http.NewRequest(http.MethodPost, c.base+path, strings.NewReader(values.Encode()))
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *client) postMultipart(path string, values map[string]string, filename, content string) (*http.Response, string) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range values {
		require.NoError(c.t, mw.WriteField(k, v))
	}
	require.NoError(c.t, mw.WriteField("csrf_token", c.cookie("csrf_token")))
	if filename != "" {
		fw, err := mw.CreateFormFile("image", filename)
		require.NoError(c.t, err)
		_, err = io.WriteString(fw, content)
		require.NoError(c.t, err)
	}
	require.NoError(c.t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, c.base+path, &buf)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(req)
}

func (c *client) postJSON(path string, v any) (*http.Response, map[string]any) {
	body, err := json.Marshal(v)
	require.NoError(c.t, err)

	req, err := http.NewRequest(http.MethodPost, c.base+path, bytes.NewReader(body))
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-CSRF-Token", c.cookie("csrf_token"))

	resp, raw := c.do(req)
	var out map[string]any
	_ = json.Unmarshal([]byte(raw), &out)
	return resp, out
}

func (c *client) signup(username string) {
	c.t.Helper()
	resp, _ := c.postMultipart("/signup", map[string]string{
		"username": username,
		"password": "pw-" + username,
		"email":    username + "@example.com",
	}, "", "")
	require.Equal(c.t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(c.t, "/home", resp.Header.Get("Location"))
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)
	c := s.client(t)

	resp, _ := c.get("/home")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login?next=%2Fhome", resp.Header.Get("Location"))

	_, body := c.get("/login?next=%2Fhome")
	assert.Contains(t, body, "Access unauthorized.")

	c.signup("alice")
	_, body = c.get("/home")
	assert.Contains(t, body, "Hello, alice!")

	resp, _ = c.get("/")
	assert.Equal(t, "/home", resp.Header.Get("Location"))

	resp, _ = c.get("/logout")
	assert.Equal(t, "/login", resp.Header.Get("Location"))
	_, body = c.get("/login")
	assert.Contains(t, body, "Logout successful!")

	t.Run("wrong password", func(t *testing.T) {
		resp, body := c.postForm("/login", url.Values{"username": {"alice"}, "password": {"nope"}})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Contains(t, body, "Invalid credentials.")
	})

	t.Run("next is honoured for local paths only", func(t *testing.T) {
		resp, _ := c.postForm("/login?next=%2Flogs%2Fnew", url.Values{"username": {"alice"}, "password": {"pw-alice"}})
		assert.Equal(t, "/logs/new", resp.Header.Get("Location"))

		c.get("/logout")
		resp, _ = c.postForm("/login?next=https%3A%2F%2Fevil.example", url.Values{"username": {"alice"}, "password": {"pw-alice"}})
		assert.Equal(t, "/home", resp.Header.Get("Location"))
	})

	t.Run("duplicate signup", func(t *testing.T) {
		other := s.client(t)
		resp, body := other.postMultipart("/signup", map[string]string{
			"username": "alice", "password": "x", "email": "x@example.com",
		}, "", "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, body, "Username already taken")
	})

	t.Run("missing csrf token", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPost, c.base+"/logs/new", strings.NewReader("title=x"))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		resp, _ := c.do(req)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func TestLedgerRoutes(t *testing.T) {
	s := newTestServer(t)
	alice := s.client(t)
	alice.signup("alice")
	bob := s.client(t)
	bob.signup("bob")

	resp, _ := alice.postMultipart("/maintenance/new", map[string]string{
		"title":    "Oil change",
		"location": "Austin, TX",
		"mileage":  "42000",
		"date":     "2024-03-01",
		"body":     "**5w30**",
	}, "oil.png", "png")
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	detail := resp.Header.Get("Location")
	require.True(t, strings.HasPrefix(detail, "/maintenance/"))

	_, body := alice.get(detail)
	assert.Contains(t, body, "Oil change")
	assert.Contains(t, body, "<strong>5w30</strong>")
	assert.Contains(t, body, "/static/images/")

	t.Run("media is served", func(t *testing.T) {
		users, err := os.ReadDir(s.mediaRoot)
		require.NoError(t, err)
		require.Len(t, users, 1)
		files, err := os.ReadDir(filepath.Join(s.mediaRoot, users[0].Name()))
		require.NoError(t, err)
		require.Len(t, files, 1)
		assert.True(t, strings.HasSuffix(files[0].Name(), "_oil.png"))

		resp, body := alice.get("/static/images/" + users[0].Name() + "/" + files[0].Name())
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "png", body)
	})

	t.Run("other user is sent to new form", func(t *testing.T) {
		resp, _ := bob.get(detail)
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/maintenance/new", resp.Header.Get("Location"))

		_, body := bob.get("/maintenance/new")
		assert.Contains(t, body, "UNAUTHORIZED.")

		resp, _ = bob.postMultipart(detail+"/delete", nil, "", "")
		assert.Equal(t, "/maintenance/new", resp.Header.Get("Location"))

		resp, _ = alice.get(detail)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("validation errors re-render", func(t *testing.T) {
		resp, body := alice.postMultipart("/logs/new", map[string]string{
			"title": "", "date": "2024-03-01", "body": "x", "mileage": "lots",
		}, "", "")
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		assert.Contains(t, body, "Must be a whole number.")
	})

	t.Run("edit and delete", func(t *testing.T) {
		resp, _ := alice.postMultipart(detail+"/edit", map[string]string{
			"title":    "Oil and filter",
			"location": "Dallas, TX",
			"date":     "2024-03-02",
			"body":     "done",
		}, "", "")
		require.Equal(t, http.StatusSeeOther, resp.StatusCode)

		_, body := alice.get("/maintenance/all")
		assert.Contains(t, body, "Oil and filter")
		assert.Contains(t, body, "Dallas, TX")

		resp, _ = alice.postMultipart(detail+"/delete", nil, "", "")
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/maintenance/new", resp.Header.Get("Location"))

		resp, _ = alice.get(detail)
		assert.Equal(t, "/maintenance/new", resp.Header.Get("Location"))
	})

	t.Run("unknown id", func(t *testing.T) {
		resp, _ := alice.get("/logs/abc")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestPlaceAndSearchRoutes(t *testing.T) {
	s := newTestServer(t)
	anon := s.client(t)

	place := map[string]any{"placeId": "b1", "name": "Joe's Garage", "rating": 4.5}

	resp, out := anon.postJSON("/places/save", place)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "not added", out["message"])

	alice := s.client(t)
	alice.signup("alice")

	_, out = alice.postJSON("/places/save", place)
	assert.Equal(t, "added", out["message"])
	_, out = alice.postJSON("/places/save", place)
	assert.Equal(t, "already saved", out["message"])

	_, body := alice.get("/places")
	assert.Contains(t, body, "Joe&#39;s Garage")

	resp, out = alice.postJSON("/places/missing/delete", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, out = alice.postJSON("/places/b1/delete", nil)
	assert.Equal(t, "deleted", out["message"])

	resp, out = alice.postJSON("/search", map[string]string{"category": "tires", "city": "Austin, TX"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	businesses := out["businesses"].([]any)
	require.Len(t, businesses, 1)
	assert.Equal(t, "tires in Austin, TX", businesses[0].(map[string]any)["name"])

	resp, _ = anon.postJSON("/search", map[string]string{"category": "tires", "city": "Austin, TX"})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestAccountRoutes(t *testing.T) {
	s := newTestServer(t)
	c := s.client(t)
	c.signup("alice")

	resp, body := c.postForm("/users/change_password", url.Values{
		"current_password": {"wrong"}, "new_password": {"pw2"}, "confirm_password": {"pw2"},
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body, "Current password is not correct.")

	_, body = c.postForm("/users/change_password", url.Values{
		"current_password": {"pw-alice"}, "new_password": {"pw2"}, "confirm_password": {"pw3"},
	})
	assert.Contains(t, body, "New Passwords Must Match")

	resp, _ = c.postForm("/users/change_password", url.Values{
		"current_password": {"pw-alice"}, "new_password": {"pw2"}, "confirm_password": {"pw2"},
	})
	assert.Equal(t, "/users/profile", resp.Header.Get("Location"))

	resp, _ = c.postMultipart("/users/edit", map[string]string{
		"username": "alice2", "email": "a2@example.com", "bio": "Drives a wagon",
	}, "me.png", "png")
	assert.Equal(t, "/users/profile", resp.Header.Get("Location"))

	_, body = c.get("/users/profile")
	assert.Contains(t, body, "alice2")
	assert.Contains(t, body, "Drives a wagon")

	resp, _ = c.postForm("/users/delete", nil)
	assert.Equal(t, "/signup", resp.Header.Get("Location"))

	entries, err := os.ReadDir(s.mediaRoot)
	require.NoError(t, err)
	assert.Empty(t, entries)

	resp, _ = c.get("/home")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func TestNotFoundAndMetrics(t *testing.T) {
	s := newTestServer(t)
	c := s.client(t)

	resp, body := c.get("/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "Page not found")

	resp, body = c.get("/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "greenflash_http_requests_total")

	resp, _ = c.get("/assets/css/app.css")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

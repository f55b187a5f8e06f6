package ui

import (
	"context"
	"crypto/sha256"
	"log/slog"
	"net/http"

	"github.com/gorilla/securecookie"
)

const flashCookie = "flash"

// Flash categories, used as CSS classes.
const (
	FlashSuccess = "success"
	FlashDanger  = "danger"
	FlashInfo    = "info"
)

type Flash struct {
	Category string
	Message  string
}

// FlashStore keeps pending flashes in a signed and encrypted cookie until a
// page displays them.
type FlashStore struct {
	codec  *securecookie.SecureCookie
	secure bool
}

func NewFlashStore(secret string, secure bool) *FlashStore {
	hashKey := sha256.Sum256([]byte("flash-hash:" + secret))
	blockKey := sha256.Sum256([]byte("flash-block:" + secret))

	codec := securecookie.New(hashKey[:], blockKey[:])
	codec.MaxAge(3600)

	return &FlashStore{codec: codec, secure: secure}
}

type flashKey struct{}

type flashState struct {
	store   *FlashStore
	flashes []Flash
}

// WithFlashes loads flashes carried by the request cookie into the context.
func (s *FlashStore) WithFlashes(ctx context.Context, r *http.Request) context.Context {
	st := &flashState{store: s}

	cookie, err := r.Cookie(flashCookie)
	if err == nil {
		err = s.codec.Decode(flashCookie, cookie.Value, &st.flashes)
		if err != nil {
			slog.Debug("discarding unreadable flash cookie", "error", err)
			st.flashes = nil
		}
	}

	return context.WithValue(ctx, flashKey{}, st)
}

func (s *FlashStore) write(w http.ResponseWriter, flashes []Flash) {
	if len(flashes) == 0 {
		http.SetCookie(w, &http.Cookie{
			Name:     flashCookie,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   s.secure,
			SameSite: http.SameSiteLaxMode,
		})
		return
	}

	encoded, err := s.codec.Encode(flashCookie, flashes)
	if err != nil {
		slog.Error("failed to encode flash", "error", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// AddFlash queues a message for the next rendered page, which may be the
// current one or the target of a redirect.
func AddFlash(w http.ResponseWriter, r *http.Request, category, message string) {
	st, _ := r.Context().Value(flashKey{}).(*flashState)
	if st == nil {
		return
	}

	st.flashes = append(st.flashes, Flash{Category: category, Message: message})
	st.store.write(w, st.flashes)
}

// PopFlashes returns and clears the queued messages.
func PopFlashes(w http.ResponseWriter, r *http.Request) []Flash {
	st, _ := r.Context().Value(flashKey{}).(*flashState)
	if st == nil || len(st.flashes) == 0 {
		return nil
	}

	flashes := st.flashes
	st.flashes = nil
	st.store.write(w, nil)
	return flashes
}

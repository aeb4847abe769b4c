package http

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/m-mizutani/ctxlog"
	"github.com/secmon-lab/incidex/pkg/domain/model"
)

const flashCookie = "incidex_flash"

// setFlash stores a notice to show on the next page view. It carries a
// store notice across the post/redirect/get round trip.
func setFlash(w http.ResponseWriter, r *http.Request, notice model.Notice) {
	data, err := json.Marshal(notice)
	if err != nil {
		ctxlog.From(r.Context()).Warn("failed to encode flash", "error", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(data),
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   60,
	})
}

// popFlash returns the pending notice, if any, and clears it
func popFlash(w http.ResponseWriter, r *http.Request) *model.Notice {
	cookie, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	data, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		ctxlog.From(r.Context()).Debug("discarding malformed flash", "error", err)
		return nil
	}

	var notice model.Notice
	if err := json.Unmarshal(data, &notice); err != nil || notice.Message == "" {
		return nil
	}
	return &notice
}

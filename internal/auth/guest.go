package auth

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	authmw "github.com/studypod/studypod/internal/auth/middleware"
	"github.com/studypod/studypod/internal/config"
)

// GuestLoginHandler hands out a student token without registration. The
// guest identity survives across visits via a cookie so the same library of
// materials keeps loading.
func GuestLoginHandler(a *authmw.AuthService, db *sql.DB, cfg config.Config) http.HandlerFunc {
	type out struct {
		AccessToken string `json:"access_token"`
		Username    string `json:"username"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if !cfg.EnableGuestAuth {
			http.Error(w, "guest auth disabled", http.StatusForbidden)
			return
		}

		// Reuse an existing guest from the cookie when it still resolves.
		if c, err := r.Cookie("sp_guest_id"); err == nil && c.Value != "" && strings.HasPrefix(c.Value, "guest|") {
			var username, role string
			err := db.QueryRow(`SELECT username, role FROM users WHERE id=$1`, c.Value).Scan(&username, &role)
			if err == nil && role == "student" {
				tok, _ := a.IssueJWT(c.Value, role)
				setGuestCookie(w, c.Value)
				_ = json.NewEncoder(w).Encode(out{AccessToken: tok, Username: username})
				return
			}
		}

		sfx := strconv.FormatInt(time.Now().UnixNano(), 36)
		userID := "guest|" + sfx
		username := "guest-" + sfx[len(sfx)-6:]

		_, _ = db.Exec(`INSERT INTO users (id, username, role, created_at)
		                VALUES ($1,$2,'student',$3)`, userID, username, time.Now().Unix())

		tok, err := a.IssueJWT(userID, "student")
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		setGuestCookie(w, userID)
		_ = json.NewEncoder(w).Encode(out{AccessToken: tok, Username: username})
	}
}

func setGuestCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "sp_guest_id",
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(30 * 24 * time.Hour),
	})
}

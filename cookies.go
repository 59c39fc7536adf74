package authcore

import "net/http"

// WriteSessionCookies attaches the access and refresh tokens to the outbound
// response. The refresh cookie lives for the refresh TTL; the access cookie
// for the access TTL.
func (e *Engine) WriteSessionCookies(w http.ResponseWriter, pair TokenPair) {
	if e == nil || w == nil {
		return
	}

	cfg := e.config.Cookies
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.AccessName,
		Value:    pair.AccessToken,
		Path:     cfg.Path,
		Domain:   cfg.Domain,
		MaxAge:   int(e.config.Tokens.AccessTTL.Seconds()),
		Secure:   cfg.Secure,
		HttpOnly: true,
		SameSite: cfg.SameSite,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.RefreshName,
		Value:    pair.RefreshToken,
		Path:     cfg.Path,
		Domain:   cfg.Domain,
		MaxAge:   int(e.config.Tokens.RefreshTTL.Seconds()),
		Secure:   cfg.Secure,
		HttpOnly: true,
		SameSite: cfg.SameSite,
	})
}

// AccessCookieName reports the configured access token cookie name.
func (e *Engine) AccessCookieName() string {
	if e == nil {
		return ""
	}
	return e.config.Cookies.AccessName
}

// RefreshCookieName reports the configured refresh token cookie name.
func (e *Engine) RefreshCookieName() string {
	if e == nil {
		return ""
	}
	return e.config.Cookies.RefreshName
}

// ClearSessionCookies expires both session cookies on the outbound response.
func (e *Engine) ClearSessionCookies(w http.ResponseWriter) {
	if e == nil || w == nil {
		return
	}

	cfg := e.config.Cookies
	for _, name := range []string{cfg.AccessName, cfg.RefreshName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     cfg.Path,
			Domain:   cfg.Domain,
			MaxAge:   -1,
			Secure:   cfg.Secure,
			HttpOnly: true,
			SameSite: cfg.SameSite,
		})
	}
}

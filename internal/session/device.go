package session

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// DeviceCookieName identifies the browser's slot in the server keyspace.
const DeviceCookieName = "tc_sid"

// DeviceID returns the device id from the request, issuing a new one on the
// response when absent or malformed.
func DeviceID(w http.ResponseWriter, r *http.Request, ttl time.Duration) string {
	if ck, err := r.Cookie(DeviceCookieName); err == nil {
		if _, perr := uuid.Parse(ck.Value); perr == nil {
			return ck.Value
		}
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     DeviceCookieName,
		Value:    id,
		Path:     CookiePath,
		MaxAge:   int(ttl / time.Second),
		SameSite: http.SameSiteLaxMode,
		Secure:   IsSecureRequest(r),
		HttpOnly: true,
	})
	// make the new id visible to later reads in the same request
	r.AddCookie(&http.Cookie{Name: DeviceCookieName, Value: id})
	return id
}

// ForRequest builds the dashboard session for one request: the device's
// keyspace slot as primary and the token cookie as mirror.
func ForRequest(w http.ResponseWriter, r *http.Request, ks Keyspace, opts ...Option) *Session {
	s := New(nil, NewCookieStore(w, r), opts...)
	s.primary = Scope(ks, DeviceID(w, r, s.ttl))
	return s
}

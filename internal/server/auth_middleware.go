package server

import "net/http"

// requireAuthentication enforces SigV4 on every request. It is the sole
// place AccessDenied is produced (§7); handlers never fabricate it.
func (s *Server) requireAuthentication(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := s.auth.Authenticate(r); err != nil {
			writeError(w, r, ErrAccessDenied())
			return
		}
		next.ServeHTTP(w, r)
	})
}

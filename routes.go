package auth

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Handler returns the full HTTP surface of the provider, wrapped in the
// session middleware. Mount it under a prefix with http.StripPrefix:
//
//	mux.Handle("/auth/", http.StripPrefix("/auth", a.Handler()))
func (a *Auth) Handler() http.Handler {
	a.EnsureDefaults()

	router := mux.NewRouter()
	router.HandleFunc("/signup", a.HandleSignUp).Methods(http.MethodPost)
	router.HandleFunc("/login", a.HandleSignIn).Methods(http.MethodPost)
	router.HandleFunc("/logout", a.HandleSignOut).Methods(http.MethodGet, http.MethodPost)
	router.HandleFunc("/change-password", a.HandleChangePassword).Methods(http.MethodPost)
	router.HandleFunc("/send-otp", a.HandleSendOTP).Methods(http.MethodPost)
	router.HandleFunc("/verify-otp", a.HandleVerifyOTP).Methods(http.MethodPost)
	router.HandleFunc("/me", a.HandleMe).Methods(http.MethodGet)

	if a.Session != nil {
		return a.Session.LoadAndSave(router)
	}
	return router
}

package devserver

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) initRoutes() {
	api := func(method, route string) string {
		return method + " " + APIPrefix + route
	}

	// LOGIN
	s.RegisterRouteHandler(api("POST", RouteAuthLogin), ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler(api("POST", RouteAuthSocialLogin), ChainMiddleware(s.SocialLoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler(api("POST", RouteAuthRefresh), ChainMiddleware(s.RefreshHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler(api("POST", RouteAuthLogout), ChainMiddleware(s.LogoutHandler(), s.APIMiddleware()...))

	// SIGNUP
	s.RegisterRouteHandler(api("POST", RouteAuthSignup), ChainMiddleware(s.SignupHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler(api("POST", RouteAuthSendVerification), ChainMiddleware(s.SendVerificationHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler(api("POST", RouteAuthVerifyEmail), ChainMiddleware(s.VerifyEmailHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler(api("POST", RouteAuthResetPassword), ChainMiddleware(s.ResetPasswordHandler(), s.APIMiddleware()...))

	// Protected routes (require a valid access token)
	s.RegisterRouteHandler(api("DELETE", RouteAuthAccount), ChainMiddleware(s.DeleteAccountHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler(api("GET", RouteUserProfile), ChainMiddleware(s.ProfileHandler(), s.APIMiddleware(s.RequireAuth())...))
	s.RegisterRouteHandler(api("POST", RouteDevRevokeAccess), ChainMiddleware(s.RevokeAccessHandler(), s.APIMiddleware(s.RequireAuth())...))

	s.RegisterRouteHandler("GET "+RouteMetrics, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	s.RegisterRouteFunc("GET "+RouteHealth, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

package authapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/go-session-client/apiclient"
	"github.com/jrsteele09/go-session-client/apierror"
	"github.com/jrsteele09/go-session-client/auth"
	"github.com/jrsteele09/go-session-client/auth/repofakes"
	"github.com/jrsteele09/go-session-client/authapi"
	"github.com/jrsteele09/go-session-client/authmodel"
	"github.com/jrsteele09/go-session-client/devserver"
	refreshrepofake "github.com/jrsteele09/go-session-client/devserver/rotation/repofake"
	"github.com/jrsteele09/go-session-client/internal/config"
	"github.com/jrsteele09/go-session-client/sessions"
	"github.com/jrsteele09/go-session-client/token"
	tokenfakerepo "github.com/jrsteele09/go-session-client/token/repofake"
	"github.com/jrsteele09/go-session-client/token/refresh"
	fakeuserrepo "github.com/jrsteele09/go-session-client/users/repofake"
	"github.com/stretchr/testify/require"
)

const (
	testEmail    = "sam@example.com"
	testPassword = "password123"
)

type devServerConfig struct{}

func (devServerConfig) GetPort() string                      { return ":0" }
func (devServerConfig) GetSigningSecret() string             { return "authapi-secret" }
func (devServerConfig) GetAccessTokenExpiry() time.Duration  { return 5 * time.Minute }
func (devServerConfig) GetRefreshTokenExpiry() time.Duration { return time.Hour }
func (devServerConfig) GetRefreshTokenLength() int           { return 16 }

type testConfig struct {
	config.EnvVars
	devServerConfig
}

type testFixture struct {
	client  *apiclient.Client
	store   *tokenfakerepo.FakeTokenRepo
	manager *sessions.Manager
	api     *authapi.API
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	s, err := devserver.New(testConfig{}, auth.Repos{
		Users:         fakeuserrepo.NewFakeUserRepo(),
		Verifications: repofakes.NewFakeVerificationRepo(),
	}, refreshrepofake.NewFakeRefreshTokenRepo())
	require.NoError(t, err)
	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)

	base := srv.URL + devserver.APIPrefix
	store := tokenfakerepo.NewFakeTokenRepo()
	manager := sessions.NewManager(store, refresh.NewHTTPExchanger(base, srv.Client(), 10*time.Second))
	manager.Load(context.Background())

	client := apiclient.New(base, srv.Client(), manager)
	return &testFixture{
		client:  client,
		store:   store,
		manager: manager,
		api:     authapi.New(client, manager),
	}
}

func (f *testFixture) signup(t *testing.T) *authmodel.AuthResponse {
	t.Helper()
	ctx := context.Background()

	_, err := f.api.SendVerification(ctx, testEmail)
	require.NoError(t, err)
	status, err := f.api.VerifyEmail(ctx, testEmail, auth.VerificationCode)
	require.NoError(t, err)
	require.True(t, status.Success)

	resp, err := f.api.Signup(ctx, authmodel.SignupRequest{Email: testEmail, Password: testPassword, Username: "sam"})
	require.NoError(t, err)
	return resp
}

func TestSignupInstallsSession(t *testing.T) {
	f := setupTestFixture(t)
	resp := f.signup(t)

	require.True(t, resp.IsNewUser)
	s := f.manager.Current()
	require.Equal(t, sessions.LoggedIn, s.Status)
	require.Equal(t, resp.AccessToken, s.AccessToken)
	require.Equal(t, testEmail, s.User.Email)

	stored, err := f.store.Get(context.Background(), token.KeyRefreshToken)
	require.NoError(t, err)
	require.Equal(t, resp.RefreshToken, stored)

	profile, err := f.api.Profile(context.Background())
	require.NoError(t, err)
	require.Equal(t, "sam", profile.Username)
}

func TestVerifyEmailWrongCode(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	_, err := f.api.SendVerification(ctx, testEmail)
	require.NoError(t, err)
	_, err = f.api.VerifyEmail(ctx, testEmail, "999999")
	require.True(t, apierror.IsCode(err, apierror.CodeValidation))
}

func TestLoginFailureLeavesSessionLoggedOut(t *testing.T) {
	f := setupTestFixture(t)
	f.signup(t)
	require.NoError(t, f.manager.ClearAuth(context.Background()))

	_, err := f.api.Login(context.Background(), testEmail, "wrong-pass1")
	require.True(t, apierror.IsCode(err, apierror.CodeUnauthorized))
	require.Equal(t, sessions.LoggedOut, f.manager.Current().Status)
}

func TestRejectedAccessTokenIsRefreshed(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	f.signup(t)
	require.NoError(t, f.manager.ClearAuth(ctx))

	resp, err := f.api.Login(ctx, testEmail, testPassword)
	require.NoError(t, err)
	require.False(t, resp.IsNewUser)

	// the server will reject this access token, forcing a refresh with the real refresh token
	require.NoError(t, f.manager.SetAuthData(ctx, "revoked-access-token", resp.RefreshToken, resp.User))

	const callers = 5
	errs := make(chan error, callers)
	for i := 0; i < callers; i++ {
		go func() {
			_, err := f.api.Profile(ctx)
			errs <- err
		}()
	}
	// a second exchange of the single-use refresh token would fail and log the session out
	for i := 0; i < callers; i++ {
		require.NoError(t, <-errs)
	}

	s := f.manager.Current()
	require.Equal(t, sessions.LoggedIn, s.Status)
	require.NotEqual(t, "revoked-access-token", s.AccessToken)
	require.NotEqual(t, resp.RefreshToken, s.RefreshToken)
}

func TestServerRevokedAccessToken(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	resp := f.signup(t)

	require.NoError(t, f.client.Do(ctx, http.MethodPost, devserver.RouteDevRevokeAccess, nil, nil))

	profile, err := f.api.Profile(ctx)
	require.NoError(t, err)
	require.Equal(t, testEmail, profile.Email)
	require.NotEqual(t, resp.AccessToken, f.manager.AccessToken())
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	resp := f.signup(t)

	require.NoError(t, f.api.Logout(ctx))
	require.Equal(t, sessions.LoggedOut, f.manager.Current().Status)

	// the revoked token cannot bring the session back
	require.NoError(t, f.manager.SetAuthData(ctx, "revoked-access-token", resp.RefreshToken, resp.User))
	_, err := f.api.Profile(ctx)
	require.True(t, apierror.IsCode(err, apierror.CodeUnauthorized))
	require.ErrorIs(t, err, sessions.ErrRefreshFailed)
	require.Equal(t, sessions.LoggedOut, f.manager.Current().Status)
}

func TestDeleteAccountClearsSession(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	f.signup(t)

	_, err := f.api.DeleteAccount(ctx, testEmail, "wrong-pass1")
	require.True(t, apierror.IsCode(err, apierror.CodeForbidden))
	require.Equal(t, sessions.LoggedIn, f.manager.Current().Status)

	status, err := f.api.DeleteAccount(ctx, testEmail, testPassword)
	require.NoError(t, err)
	require.True(t, status.Success)
	require.Equal(t, sessions.LoggedOut, f.manager.Current().Status)
	require.Zero(t, f.store.Len())
}

func TestSocialLogin(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	first, err := f.api.SocialLogin(ctx, "google", "google-subject")
	require.NoError(t, err)
	require.True(t, first.IsNewUser)
	require.Equal(t, sessions.LoggedIn, f.manager.Current().Status)

	require.NoError(t, f.api.Logout(ctx))

	second, err := f.api.SocialLogin(ctx, "google", "google-subject")
	require.NoError(t, err)
	require.False(t, second.IsNewUser)
	require.Equal(t, first.User.ID, second.User.ID)
}

func TestResetPassword(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()
	f.signup(t)

	_, err := f.api.SendVerification(ctx, testEmail)
	require.NoError(t, err)
	_, err = f.api.VerifyEmail(ctx, testEmail, auth.VerificationCode)
	require.NoError(t, err)
	_, err = f.api.ResetPassword(ctx, testEmail, "newpassword9")
	require.NoError(t, err)

	require.NoError(t, f.manager.ClearAuth(ctx))
	_, err = f.api.Login(ctx, testEmail, "newpassword9")
	require.NoError(t, err)
}

package services

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/client/client"
	"github.com/dmitrijs2005/sessionkeeper/internal/client/models"
	"github.com/dmitrijs2005/sessionkeeper/internal/client/session"
	"github.com/dmitrijs2005/sessionkeeper/internal/logging"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- fake client ----

// fakeClient implements client.Client for AuthService unit tests.
type fakeClient struct {
	mu sync.Mutex

	UserInfoRet *models.Identity
	UserInfoErr error
	LogoutErr   error
	CloseErr    error

	// Release, when set, blocks UserInfo until closed.
	Release chan struct{}

	UserInfoCalls int
	LogoutCalls   int
	CloseCalls    int
}

func (f *fakeClient) UserInfo(ctx context.Context) (*models.Identity, error) {
	f.mu.Lock()
	f.UserInfoCalls++
	release := f.Release
	f.mu.Unlock()

	if release != nil {
		<-release
	}
	if f.UserInfoErr != nil {
		return nil, f.UserInfoErr
	}
	id := *f.UserInfoRet
	return &id, nil
}

func (f *fakeClient) Logout(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LogoutCalls++
	return f.LogoutErr
}

func (f *fakeClient) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CloseCalls++
	return f.CloseErr
}

func (f *fakeClient) calls() (userInfo, logout int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.UserInfoCalls, f.LogoutCalls
}

var _ client.Client = (*fakeClient)(nil)

// ---- fake navigator ----

type fakeNavigator struct {
	mu      sync.Mutex
	current string
	visited []string
}

func newFakeNavigator(start string) *fakeNavigator {
	return &fakeNavigator{current: start}
}

func (n *fakeNavigator) Navigate(ctx context.Context, path string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.current = path
	n.visited = append(n.visited, path)
	return nil
}

func (n *fakeNavigator) Current() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

func (n *fakeNavigator) Visited() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.visited...)
}

// ---- helpers ----

func identityExpiringAt(t *testing.T, exp time.Time, groups ...string) *models.Identity {
	t.Helper()
	id, err := models.Resolve(models.Identity{
		Subject: "u-1",
		Email:   "alice@example.com",
		Name:    "Alice",
		Groups:  groups,
		Exp:     exp.Unix(),
		Iat:     time.Now().Unix(),
	})
	require.NoError(t, err)
	return &id
}

func wait(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for completion")
	}
}

func newService(t *testing.T, fc *fakeClient, nav Navigator, opts ...AuthOption) (AuthService, *session.Holder) {
	t.Helper()
	h := session.NewHolder()
	svc := NewAuthService(fc, h, nav, logging.Nop(), opts...)
	t.Cleanup(func() { h.Stop() })
	return svc, h
}

// ---- TESTS ----

func TestInitialize_ResolvesSession(t *testing.T) {
	fc := &fakeClient{UserInfoRet: identityExpiringAt(t, time.Now().Add(2*time.Hour), "abstratium-abstrasst_user")}
	svc, _ := newService(t, fc, newFakeNavigator("/"))

	wait(t, svc.Initialize(context.Background()))

	s := svc.Session()
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "alice@example.com", s.Email())
	assert.Equal(t, "Alice", s.Name())
	assert.True(t, s.HasRole("abstratium-abstrasst_user"))
	assert.False(t, s.HasRole("admin"))
	assert.False(t, s.IsExpired())
	assert.False(t, s.IsAboutToExpire())
}

func TestInitialize_FetchesOnce(t *testing.T) {
	release := make(chan struct{})
	fc := &fakeClient{
		UserInfoRet: identityExpiringAt(t, time.Now().Add(2*time.Hour)),
		Release:     release,
	}
	svc, _ := newService(t, fc, newFakeNavigator("/"))

	first := svc.Initialize(context.Background())
	second := svc.Initialize(context.Background())
	close(release)

	wait(t, first)
	wait(t, second)
	wait(t, svc.Initialize(context.Background()))

	userInfo, _ := fc.calls()
	assert.Equal(t, 1, userInfo)
}

func TestInitialize_FailureStaysAnonymous(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "unauthorized", err: client.ErrUnauthorized},
		{name: "unavailable", err: client.ErrUnavailable},
		{name: "bad payload", err: models.ErrInvalidIdentity},
		{name: "anything else", err: errors.New("boom")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := &fakeClient{UserInfoErr: tt.err}
			nav := newFakeNavigator("/")
			svc, _ := newService(t, fc, nav)

			wait(t, svc.Initialize(context.Background()))

			assert.Empty(t, cmp.Diff(models.Anonymous(), svc.Session().Current()))
			assert.False(t, svc.Session().IsAuthenticated())
			assert.Empty(t, nav.Visited(), "a failed bootstrap does not navigate")
		})
	}
}

func TestResetToken(t *testing.T) {
	fc := &fakeClient{UserInfoRet: identityExpiringAt(t, time.Now().Add(2*time.Hour), "admin")}
	svc, _ := newService(t, fc, newFakeNavigator("/"))
	wait(t, svc.Initialize(context.Background()))
	require.True(t, svc.Session().IsAuthenticated())

	svc.ResetToken()

	assert.False(t, svc.Session().IsAuthenticated())
	assert.False(t, svc.Session().HasRole("admin"))
	assert.Equal(t, models.AnonymousEmail, svc.Session().Email())
}

func TestSignout_NavigatesRegardlessOfLogoutResult(t *testing.T) {
	tests := []struct {
		name      string
		logoutErr error
	}{
		{name: "logout ok"},
		{name: "logout failed", logoutErr: client.ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := &fakeClient{
				UserInfoRet: identityExpiringAt(t, time.Now().Add(2*time.Hour)),
				LogoutErr:   tt.logoutErr,
			}
			nav := newFakeNavigator("/")
			svc, _ := newService(t, fc, nav)
			wait(t, svc.Initialize(context.Background()))

			done := svc.Signout(context.Background())
			assert.False(t, svc.Session().IsAuthenticated(), "reset happens before the logout call")

			wait(t, done)
			_, logout := fc.calls()
			assert.Equal(t, 1, logout)
			assert.Equal(t, []string{DefaultSignedOutRoute}, nav.Visited())
		})
	}
}

func TestSignout_LogsFailedLogoutAtWarn(t *testing.T) {
	var buf bytes.Buffer
	log, err := logging.New(&buf, "warn", "text")
	require.NoError(t, err)

	fc := &fakeClient{LogoutErr: client.ErrUnexpectedStatus}
	h := session.NewHolder()
	svc := NewAuthService(fc, h, newFakeNavigator("/"), log)

	wait(t, svc.Signout(context.Background()))

	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "component=auth")
	assert.Contains(t, buf.String(), "unexpected status")
}

func TestSignout_CustomRouteAndCancelledContext(t *testing.T) {
	fc := &fakeClient{}
	nav := newFakeNavigator("/")
	svc, _ := newService(t, fc, nav, WithSignedOutRoute("/bye"))

	ctx, cancel := context.WithCancel(context.Background())
	done := svc.Signout(ctx)
	cancel()

	wait(t, done)
	assert.Equal(t, []string{"/bye"}, nav.Visited())
}

func TestExpiry_SignsOutWhenTokenIsAlmostGone(t *testing.T) {
	fc := &fakeClient{UserInfoRet: identityExpiringAt(t, time.Now().Add(30*time.Second))}
	nav := newFakeNavigator("/")
	svc, _ := newService(t, fc, nav)

	wait(t, svc.Initialize(context.Background()))

	assert.Eventually(t, func() bool {
		_, logout := fc.calls()
		return logout == 1 && len(nav.Visited()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.False(t, svc.Session().IsAuthenticated())
	assert.Equal(t, DefaultSignedOutRoute, nav.Current())
}

func TestExpiry_MissingExpSignsOutImmediately(t *testing.T) {
	id, err := models.Resolve(models.Identity{Subject: "u-1", Email: "bob@example.com"})
	require.NoError(t, err)

	fc := &fakeClient{UserInfoRet: &id}
	nav := newFakeNavigator("/")
	svc, _ := newService(t, fc, nav)

	wait(t, svc.Initialize(context.Background()))

	assert.Eventually(t, func() bool {
		_, logout := fc.calls()
		return logout == 1 && len(nav.Visited()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.False(t, svc.Session().IsAuthenticated())
}

func TestExpiry_NotFiredForLongLivedSession(t *testing.T) {
	fc := &fakeClient{UserInfoRet: identityExpiringAt(t, time.Now().Add(2*time.Hour))}
	nav := newFakeNavigator("/")
	svc, _ := newService(t, fc, nav)

	wait(t, svc.Initialize(context.Background()))

	assert.Never(t, func() bool {
		_, logout := fc.calls()
		return logout > 0
	}, 100*time.Millisecond, 10*time.Millisecond)
	assert.True(t, svc.Session().IsAuthenticated())
}

func TestClose_ReleasesClient(t *testing.T) {
	fc := &fakeClient{CloseErr: errors.New("close failed")}
	svc, _ := newService(t, fc, newFakeNavigator("/"))

	wait(t, svc.Signout(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.EqualError(t, svc.Close(ctx), "close failed")
	assert.Equal(t, 1, fc.CloseCalls)
}

func TestSignout_AfterCloseOnlyResets(t *testing.T) {
	fc := &fakeClient{UserInfoRet: identityExpiringAt(t, time.Now().Add(2*time.Hour))}
	nav := newFakeNavigator("/")
	svc, _ := newService(t, fc, nav)
	wait(t, svc.Initialize(context.Background()))

	require.NoError(t, svc.Close(context.Background()))

	wait(t, svc.Signout(context.Background()))
	_, logout := fc.calls()
	assert.Zero(t, logout)
	assert.Empty(t, nav.Visited())
	assert.False(t, svc.Session().IsAuthenticated())
}

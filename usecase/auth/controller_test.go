package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fastygo/bizdesk/domain"
)

type fakeProvider struct {
	mu    sync.Mutex
	calls []string

	snapshot   domain.SessionSnapshot
	sessionErr error
	release    chan struct{}

	signUpResult *domain.SignUpResult
	signInErr    error
	signOutErr   error

	events       chan domain.AuthEvent
	unsubscribed int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{events: make(chan domain.AuthEvent, 8)}
}

func (f *fakeProvider) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeProvider) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeProvider) GetSession(ctx context.Context) (domain.SessionSnapshot, error) {
	f.record("GetSession")
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return domain.SessionSnapshot{}, ctx.Err()
		}
	}
	return f.snapshot, f.sessionErr
}

func (f *fakeProvider) SignUp(_ context.Context, email, _ string) (*domain.SignUpResult, error) {
	f.record("SignUp")
	if f.signUpResult != nil {
		return f.signUpResult, nil
	}
	return &domain.SignUpResult{User: &domain.User{ID: "new-user", Email: email}}, nil
}

func (f *fakeProvider) SignIn(_ context.Context, email, _ string) (*domain.Session, error) {
	f.record("SignIn")
	if f.signInErr != nil {
		return nil, f.signInErr
	}
	return &domain.Session{AccessToken: "token", User: &domain.User{ID: "user-1", Email: email}}, nil
}

func (f *fakeProvider) SignOut(context.Context) error {
	f.record("SignOut")
	return f.signOutErr
}

func (f *fakeProvider) Subscribe() (<-chan domain.AuthEvent, func()) {
	f.record("Subscribe")
	var once sync.Once
	return f.events, func() {
		once.Do(func() {
			f.mu.Lock()
			f.unsubscribed++
			f.mu.Unlock()
			close(f.events)
		})
	}
}

type fakeProfiles struct {
	mu       sync.Mutex
	err      error
	profiles []*domain.Profile
}

func (f *fakeProfiles) InsertProfile(_ context.Context, profile *domain.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles = append(f.profiles, profile)
	return f.err
}

func notLoading(c *Controller) func() bool {
	return func() bool { return !c.State().Loading }
}

func TestController_UnconfiguredMakesNoProviderCalls(t *testing.T) {
	provider := newFakeProvider()
	c := New(false, provider, &fakeProfiles{}, nil)
	c.Start(context.Background())
	defer c.Close()

	state := c.State()
	assert.False(t, state.Loading)
	assert.False(t, state.Configured)
	assert.Equal(t, domain.NotConfiguredMessage, state.Err)
	assert.Nil(t, state.User)

	ctx := context.Background()
	_, err := c.SignIn(ctx, "a@example.com", "secret1")
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
	_, err = c.SignUp(ctx, "a@example.com", "secret1", domain.ProfileFields{})
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
	assert.ErrorIs(t, c.SignOut(ctx), domain.ErrNotConfigured)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeUnconfigured))

	assert.Empty(t, provider.Calls())
}

func TestController_StartWithExistingSession(t *testing.T) {
	provider := newFakeProvider()
	user := &domain.User{ID: "user-1", Email: "owner@example.com"}
	provider.snapshot = domain.SessionSnapshot{Session: &domain.Session{User: user}, Seq: 1}

	c := New(true, provider, nil, nil)
	assert.True(t, c.State().Loading)

	c.Start(context.Background())
	defer c.Close()

	require.Eventually(t, notLoading(c), time.Second, 5*time.Millisecond)
	state := c.State()
	assert.Equal(t, user, state.User)
	assert.Empty(t, state.Err)
	assert.True(t, state.Authenticated())
}

func TestController_StartRetrievalFailure(t *testing.T) {
	provider := newFakeProvider()
	provider.sessionErr = errors.New("failed to connect to session provider")

	c := New(true, provider, nil, nil)
	c.Start(context.Background())
	defer c.Close()

	require.Eventually(t, notLoading(c), time.Second, 5*time.Millisecond)
	state := c.State()
	assert.Equal(t, "failed to connect to session provider", state.Err)
	assert.Nil(t, state.User)
	assert.False(t, state.Authenticated())
}

func TestController_StartRunsOnce(t *testing.T) {
	provider := newFakeProvider()
	c := New(true, provider, nil, nil)
	c.Start(context.Background())
	c.Start(context.Background())
	defer c.Close()

	require.Eventually(t, notLoading(c), time.Second, 5*time.Millisecond)
	assert.ElementsMatch(t, []string{"Subscribe", "GetSession"}, provider.Calls())
}

func TestController_SignedOutNotificationClearsUser(t *testing.T) {
	provider := newFakeProvider()
	user := &domain.User{ID: "user-1"}
	provider.snapshot = domain.SessionSnapshot{Session: &domain.Session{User: user}, Seq: 1}

	c := New(true, provider, nil, nil)
	c.Start(context.Background())
	defer c.Close()
	require.Eventually(t, func() bool { return c.State().User != nil }, time.Second, 5*time.Millisecond)

	provider.events <- domain.AuthEvent{Kind: domain.EventSignedOut, Seq: 2}

	assert.Eventually(t, func() bool { return c.State().User == nil }, time.Second, 5*time.Millisecond)
	assert.False(t, c.State().Loading)
}

func TestController_NotificationBeforeFetchEndsLoading(t *testing.T) {
	provider := newFakeProvider()
	provider.release = make(chan struct{})

	c := New(true, provider, nil, nil)
	c.Start(context.Background())
	defer c.Close()

	user := &domain.User{ID: "user-2"}
	provider.events <- domain.AuthEvent{Kind: domain.EventSignedIn, Session: &domain.Session{User: user}, Seq: 1}

	require.Eventually(t, notLoading(c), time.Second, 5*time.Millisecond)
	assert.Equal(t, user, c.State().User)
	close(provider.release)
}

func TestController_StaleFetchDoesNotOverwriteNewerNotification(t *testing.T) {
	provider := newFakeProvider()
	provider.release = make(chan struct{})
	stale := &domain.User{ID: "stale"}
	provider.snapshot = domain.SessionSnapshot{Session: &domain.Session{User: stale}, Seq: 1}

	c := New(true, provider, nil, nil)
	c.Start(context.Background())
	defer c.Close()

	fresh := &domain.User{ID: "fresh"}
	provider.events <- domain.AuthEvent{Kind: domain.EventTokenRefreshed, Session: &domain.Session{User: fresh}, Seq: 3}
	require.Eventually(t, func() bool { return c.State().User == fresh }, time.Second, 5*time.Millisecond)

	close(provider.release)
	assert.Never(t, func() bool { return c.State().User != fresh }, 50*time.Millisecond, 5*time.Millisecond)
}

func TestController_FailedFetchKeepsNewerUser(t *testing.T) {
	provider := newFakeProvider()
	provider.release = make(chan struct{})
	provider.snapshot = domain.SessionSnapshot{Seq: 1}
	provider.sessionErr = errors.New("failed to connect to session provider")

	c := New(true, provider, nil, nil)
	c.Start(context.Background())
	defer c.Close()

	fresh := &domain.User{ID: "fresh"}
	provider.events <- domain.AuthEvent{Kind: domain.EventSignedIn, Session: &domain.Session{User: fresh}, Seq: 2}
	require.Eventually(t, func() bool { return c.State().User == fresh }, time.Second, 5*time.Millisecond)

	close(provider.release)
	require.Eventually(t, func() bool { return c.State().Err != "" }, time.Second, 5*time.Millisecond)

	state := c.State()
	assert.Equal(t, "failed to connect to session provider", state.Err)
	assert.Same(t, fresh, state.User)
	assert.False(t, state.Loading)
	assert.False(t, state.Authenticated())
}

func TestController_ConcurrentStartClose(t *testing.T) {
	for i := 0; i < 200; i++ {
		provider := newFakeProvider()
		c := New(true, provider, nil, nil)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() { defer wg.Done(); c.Start(context.Background()) }()
		go func() { defer wg.Done(); c.Close() }()
		wg.Wait()
		c.Close()

		before := c.State()
		time.Sleep(time.Millisecond)
		assert.Equal(t, before, c.State())
	}
}

func TestController_SignUpSurvivesProfileFailure(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	provider := newFakeProvider()
	profiles := &fakeProfiles{err: errors.New(`relation "profiles" does not exist`)}

	c := New(true, provider, profiles, zap.New(core))
	result, err := c.SignUp(context.Background(), "new@example.com", "secret1", domain.ProfileFields{
		BusinessName: "Ada Styles",
		BusinessType: "Tailor/Fashion Designer",
	})
	require.NoError(t, err)
	require.NotNil(t, result.User)
	assert.Equal(t, "new-user", result.User.ID)

	require.Len(t, profiles.profiles, 1)
	profile := profiles.profiles[0]
	assert.Equal(t, "new-user", profile.ID)
	assert.Equal(t, "new@example.com", profile.Email)
	assert.Equal(t, "Ada Styles", profile.BusinessName)
	assert.Len(t, profile.ReferralCode, 8)

	assert.Equal(t, 1, logs.FilterMessage("profile creation failed").Len())
}

func TestController_SignUpWithoutProfileWriter(t *testing.T) {
	c := New(true, newFakeProvider(), nil, nil)
	result, err := c.SignUp(context.Background(), "new@example.com", "secret1", domain.ProfileFields{})
	require.NoError(t, err)
	assert.Equal(t, "new-user", result.User.ID)
}

func TestController_ProviderErrorsAreVerbatim(t *testing.T) {
	provider := newFakeProvider()
	provider.signInErr = &domain.ProviderError{Status: 400, Code: "invalid_grant", Message: "Invalid login credentials"}
	provider.signOutErr = &domain.ProviderError{Status: 500, Message: "upstream failure"}

	c := New(true, provider, nil, nil)

	_, err := c.SignIn(context.Background(), "a@example.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Invalid login credentials", err.Error())
	assert.Same(t, provider.signInErr, err)

	err = c.SignOut(context.Background())
	assert.Equal(t, "upstream failure", err.Error())
}

func TestController_CloseIsIdempotent(t *testing.T) {
	provider := newFakeProvider()
	provider.release = make(chan struct{})

	c := New(true, provider, nil, nil)
	c.Start(context.Background())

	assert.NotPanics(t, func() {
		c.Close()
		c.Close()
	})
	assert.Equal(t, 1, provider.unsubscribed)
}

func TestController_CloseBeforeStart(t *testing.T) {
	provider := newFakeProvider()
	c := New(true, provider, nil, nil)
	c.Close()
	c.Start(context.Background())

	assert.Empty(t, provider.Calls())
}

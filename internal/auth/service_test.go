package auth

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgauth "github.com/detoxsabeho/orders-backend/pkg/auth"
	"github.com/detoxsabeho/orders-backend/pkg/config"
	pkgerrors "github.com/detoxsabeho/orders-backend/pkg/errors"
	"github.com/detoxsabeho/orders-backend/pkg/logger"
	"github.com/detoxsabeho/orders-backend/pkg/security"
)

type stubSessions struct {
	started []string
	revoked []string
	failSet bool
}

func (s *stubSessions) Start(_ context.Context, accessID string) error {
	if s.failSet {
		return fmt.Errorf("redis down")
	}
	s.started = append(s.started, accessID)
	return nil
}

func (s *stubSessions) Revoke(_ context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "test-secret", Issuer: "detoxsabeho", ExpirationMinutes: 60}
}

func testAdminConfig(t *testing.T, password string) config.AdminConfig {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	})
	require.NoError(t, err)
	return config.AdminConfig{PasswordHash: hash, Email: "admin@detoxsabeho.com"}
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func TestLoginSuccessMintsTokenAndSession(t *testing.T) {
	sessions := &stubSessions{}
	svc, err := NewService(testJWTConfig(), testAdminConfig(t, "hunter2!"), sessions, testLogger())
	require.NoError(t, err)

	result, err := svc.Login(context.Background(), "hunter2!")
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)
	require.Len(t, sessions.started, 1)

	claims, err := pkgauth.ParseAdminToken(testJWTConfig(), result.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, sessions.started[0], claims.ID, "jti must be the registered session id")
}

func TestLoginWrongPassword(t *testing.T) {
	sessions := &stubSessions{}
	svc, err := NewService(testJWTConfig(), testAdminConfig(t, "hunter2!"), sessions, testLogger())
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "guess")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized))
	assert.Empty(t, sessions.started)
}

func TestLoginEmptyPassword(t *testing.T) {
	sessions := &stubSessions{}
	svc, err := NewService(testJWTConfig(), testAdminConfig(t, "hunter2!"), sessions, testLogger())
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized))
}

func TestLoginSessionStoreFailure(t *testing.T) {
	sessions := &stubSessions{failSet: true}
	svc, err := NewService(testJWTConfig(), testAdminConfig(t, "hunter2!"), sessions, testLogger())
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "hunter2!")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeDependency))
}

func TestLogoutRevokesSession(t *testing.T) {
	sessions := &stubSessions{}
	svc, err := NewService(testJWTConfig(), testAdminConfig(t, "hunter2!"), sessions, testLogger())
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), "some-jti"))
	assert.Equal(t, []string{"some-jti"}, sessions.revoked)
}

func TestLogoutWithoutAccessID(t *testing.T) {
	sessions := &stubSessions{}
	svc, err := NewService(testJWTConfig(), testAdminConfig(t, "hunter2!"), sessions, testLogger())
	require.NoError(t, err)

	err = svc.Logout(context.Background(), "")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized))
}

func TestNewServiceValidatesDeps(t *testing.T) {
	_, err := NewService(testJWTConfig(), config.AdminConfig{}, &stubSessions{}, testLogger())
	require.Error(t, err)

	_, err = NewService(testJWTConfig(), testAdminConfig(t, "x"), nil, testLogger())
	require.Error(t, err)

	_, err = NewService(testJWTConfig(), testAdminConfig(t, "x"), &stubSessions{}, nil)
	require.Error(t, err)
}

package users_test

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/aussiebroadwan/usergate/pkg/userssdk"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Container setup and shared helpers for the usergate end-to-end tests.
 */

const (
	testImageName = "usergate-test:latest"

	testPassword = "correct horse battery"
)

// TestMain builds the Docker image once before all tests and removes it
// afterwards.
func TestMain(m *testing.M) {
	fmt.Fprintf(os.Stdout, "Building usergate Docker image...")

	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up usergate Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/users/Dockerfile",
		"../../../")
	cmd.Dir = "."
	cmd.Stdout = os.Stdout
	cmd.Stderr = nil

	return cmd.Run()
}

func cleanupDockerImage() {
	ctx := context.Background()
	cmd := exec.CommandContext(ctx, "docker", "rmi", "-f", testImageName)
	_ = cmd.Run()
}

// setupContainer starts usergate and returns its base URL. Rate limits are
// raised unless defaultLimits is set.
func setupContainer(t *testing.T, defaultLimits bool) string {
	t.Helper()
	ctx := context.Background()

	env := map[string]string{
		"USERS_ISSUER":           "usergate-e2e",
		"USERS_DEFAULT_AUDIENCE": "web",
		"USERS_ALGORITHM":        "EdDSA",
		"USERS_NUM_KEYS":         "1",
		"ENV":                    "test",
		"LOG_LEVEL":              "info",
		"LOG_FORMAT":             "json",
	}
	if !defaultLimits {
		for _, profile := range []string{"STRICT", "MODERATE"} {
			env["RATELIMIT_"+profile+"_REQUESTS"] = "1000"
			env["RATELIMIT_"+profile+"_WINDOW_SEC"] = "60"
			env["RATELIMIT_"+profile+"_BURST"] = "1000"
		}
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        testImageName,
			ExposedPorts: []string{"8080/tcp"},
			Env:          env,
			WaitingFor: wait.ForHTTP("/livez").
				WithPort("8080/tcp").
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	return fmt.Sprintf("http://%s:%s", host, mappedPort.Port())
}

// registerAndLogin creates username and returns a password-only session.
func registerAndLogin(t *testing.T, client *userssdk.Client, username string) *userssdk.Session {
	t.Helper()

	_, err := client.Register(t.Context(), username, testPassword)
	require.NoError(t, err)

	sess, err := client.Login(t.Context(), username, testPassword, "")
	require.NoError(t, err)
	return sess
}

// enableMFA runs generate-key and attach, returning the secret and the
// recovery codes.
func enableMFA(t *testing.T, sess *userssdk.Session) (string, []string) {
	t.Helper()

	key, err := sess.GenerateKey(t.Context(), time.Now())
	require.NoError(t, err)

	code, err := totp.GenerateCode(key.Secret, time.Now())
	require.NoError(t, err)

	attached, err := sess.Attach(t.Context(), key.Secret, code)
	require.NoError(t, err)
	require.Len(t, attached.RecoveryCodes, 10)

	return key.Secret, attached.RecoveryCodes
}

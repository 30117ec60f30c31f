package e2e_test

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/courseroster/internal/api"
	"github.com/mcoot/courseroster/internal/factory"
	"github.com/mcoot/courseroster/internal/services/catalog"
	"github.com/mcoot/courseroster/internal/storage/file"
	"github.com/mcoot/courseroster/internal/testutil"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath  string
	serverURL   string
	studentFile string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(t.TempDir(), "rosterctl-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/rosterctl")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath:  binaryPath,
		serverURL:   serverURL,
		studentFile: filepath.Join(t.TempDir(), "student"),
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--student-file", r.studentFile,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer runs the real server over a file-backed store in a temp dir
type testServer struct {
	url          string
	studentsPath string
	shutdown     func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	dataDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "courses.json"),
		[]byte(`[{"id":"CS101","name":"Intro to CS"},{"id":"MATH200","name":"Calculus"}]`), 0o644))

	studentsPath := filepath.Join(dataDir, "students.json")
	app, err := factory.New(context.Background(), factory.Config{
		StorageType: factory.StorageTypeFile,
		File:        file.Config{Path: studentsPath, FileMode: 0o644},
		Catalog: catalog.Config{
			CoursesPath:      filepath.Join(dataDir, "courses.json"),
			TestimonialsPath: filepath.Join(dataDir, "testimonials.json"),
		},
	})
	require.NoError(t, err)

	logger := testutil.NopLogger()
	router := api.NewRouter(api.RouterConfig{
		Logger:            logger,
		Registrar:         app.Registrar,
		AuthService:       app.AuthService,
		EnrollmentService: app.EnrollmentService,
		CatalogService:    app.CatalogService,
		Metrics:           app.Metrics,
		Gatherer:          app.Registry,
		AllowedOrigins:    []string{"*"},
	})

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	server := api.NewServer(router, api.DefaultServerConfig(), logger)
	go func() {
		if err := server.Serve(listener); err != nil {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := "http://" + listener.Addr().String()
	waitForServer(t, serverURL+"/health")

	return &testServer{
		url:          serverURL,
		studentsPath: studentsPath,
		shutdown: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
			_ = app.Close()
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// Response types for JSON parsing
type studentResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Student struct {
		ID       int    `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
	} `json:"student"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type healthResponse struct {
	Status string `json:"status"`
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.url)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	var resp healthResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestCLI_RegisterLoginEnrollDrop(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.url)

	// Register
	output, err := cli.run("register", "--user", "bob", "--pass", "pw", "--email", "b@x.com")
	require.NoError(t, err, "output: %s", output)
	var reg studentResponse
	require.NoError(t, json.Unmarshal([]byte(output), &reg))
	assert.Equal(t, 1, reg.Student.ID)

	// Duplicate registration fails
	output, err = cli.run("register", "--user", "bob", "--pass", "pw")
	require.Error(t, err)
	assert.Contains(t, output, "Username already taken")

	// Login remembers the student
	output, err = cli.run("login", "--user", "bob", "--pass", "pw")
	require.NoError(t, err, "output: %s", output)
	var login studentResponse
	require.NoError(t, json.Unmarshal([]byte(output), &login))
	assert.Equal(t, "Login successful", login.Message)

	// Enroll without --student uses the remembered id
	output, err = cli.run("enroll", "--course", `{"id":"MATH200","name":"Calculus"}`)
	require.NoError(t, err, "output: %s", output)
	var msg messageResponse
	require.NoError(t, json.Unmarshal([]byte(output), &msg))
	assert.Equal(t, "Course enrolled successfully", msg.Message)

	output, err = cli.run("enroll", "--course-id", "MATH200")
	require.Error(t, err)
	assert.Contains(t, output, "Already enrolled in this course")

	output, err = cli.run("enrollments")
	require.NoError(t, err, "output: %s", output)
	var courses []map[string]any
	require.NoError(t, json.Unmarshal([]byte(output), &courses))
	require.Len(t, courses, 1)
	assert.Equal(t, "Calculus", courses[0]["name"])

	// Drop
	output, err = cli.run("drop", "--student", "1", "--course-id", "MATH200")
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &msg))
	assert.Equal(t, "Course dropped successfully", msg.Message)

	output, err = cli.run("enrollments")
	require.NoError(t, err, "output: %s", output)
	require.NoError(t, json.Unmarshal([]byte(output), &courses))
	assert.Empty(t, courses)

	// Everything went through the file store
	data, err := os.ReadFile(ts.studentsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"enrolledCourses": []`)
}

func TestCLI_Courses(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.url)

	output, err := cli.run("courses")
	require.NoError(t, err, "output: %s", output)

	var courses []map[string]any
	require.NoError(t, json.Unmarshal([]byte(output), &courses))
	assert.Len(t, courses, 2)
}

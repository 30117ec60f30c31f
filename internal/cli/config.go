package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config holds CLI configuration
type Config struct {
	ServerURL string
	// StudentFile remembers the id of the last student to log in
	StudentFile string
	Output      string
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL:   getEnvOrDefault("ROSTER_SERVER", "http://localhost:5000"),
		StudentFile: getEnvOrDefault("ROSTER_STUDENT_FILE", defaultStudentFile()),
		Output:      "text",
	}
}

// errNoStudent is returned when no --student flag was given and nobody has logged in
var errNoStudent = errors.New("no student selected: pass --student or run login first")

// ResolveStudent returns flagValue when set, otherwise the saved student id
func (c *Config) ResolveStudent(flagValue int) (int, error) {
	if flagValue > 0 {
		return flagValue, nil
	}

	data, err := os.ReadFile(c.StudentFile)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, errNoStudent
		}
		return 0, err
	}

	id, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid student id in %s", c.StudentFile)
	}
	return id, nil
}

// SaveStudent remembers id for later commands
func (c *Config) SaveStudent(id int) error {
	dir := filepath.Dir(c.StudentFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	return os.WriteFile(c.StudentFile, []byte(strconv.Itoa(id)), 0600)
}

func defaultStudentFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".rosterctl/student"
	}
	return filepath.Join(home, ".rosterctl", "student")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

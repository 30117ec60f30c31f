package cli

import (
	"encoding/json"
	"fmt"
	"io"
)

// Output handles formatting output based on the configured format
type Output struct {
	w      io.Writer
	format string
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(w io.Writer, format string) *Output {
	return &Output{w: w, format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case StudentResult:
		o.printStudentResult(v)
	case MessageResult:
		fmt.Fprintln(o.w, v.Message)
	case CourseList:
		o.printCourses(v)
	case HealthResult:
		fmt.Fprintf(o.w, "Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Student response type (matches API)
type Student struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// StudentResult is returned by register and login
type StudentResult struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Student *Student `json:"student"`
}

// MessageResult is returned by enroll and drop
type MessageResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CourseList holds course snapshots, which are opaque apart from id
type CourseList []map[string]json.RawMessage

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printStudentResult(r StudentResult) {
	fmt.Fprintln(o.w, r.Message)
	if r.Student != nil {
		fmt.Fprintf(o.w, "Student: %s (id %d)\n", r.Student.Username, r.Student.ID)
		if r.Student.Email != "" {
			fmt.Fprintf(o.w, "Email: %s\n", r.Student.Email)
		}
	}
}

func (o *Output) printCourses(courses CourseList) {
	if len(courses) == 0 {
		fmt.Fprintln(o.w, "No courses")
		return
	}
	fmt.Fprintf(o.w, "Courses (%d):\n", len(courses))
	for _, c := range courses {
		id := string(c["id"])
		title := courseTitle(c)
		if title == "" {
			fmt.Fprintf(o.w, "  - %s\n", id)
		} else {
			fmt.Fprintf(o.w, "  - %s: %s\n", id, title)
		}
	}
}

// courseTitle returns the first human-readable name field present
func courseTitle(c map[string]json.RawMessage) string {
	for _, key := range []string{"name", "title"} {
		var s string
		if raw, ok := c[key]; ok && json.Unmarshal(raw, &s) == nil {
			return s
		}
	}
	return ""
}

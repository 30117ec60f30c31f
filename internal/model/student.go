package model

import "encoding/json"

// StudentID uniquely identifies a student. Ids are assigned in increasing
// order and never reused.
type StudentID int

// Student is a registered account together with its enrollments.
type Student struct {
	ID              StudentID `json:"id"`
	Username        string    `json:"username"`
	Password        string    `json:"password"` // stored verbatim
	Email           string    `json:"email"`
	EnrolledCourses []Course  `json:"enrolledCourses"`
}

// UnmarshalJSON accepts both the current "enrolledCourses" key and the legacy
// "enrolled_courses" key.
func (s *Student) UnmarshalJSON(data []byte) error {
	type plain Student
	var aux struct {
		plain
		LegacyCourses []Course `json:"enrolled_courses"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*s = Student(aux.plain)
	if s.EnrolledCourses == nil {
		s.EnrolledCourses = aux.LegacyCourses
	}
	if s.EnrolledCourses == nil {
		s.EnrolledCourses = []Course{}
	}
	return nil
}

// PublicStudent is the credential-free view of a Student
type PublicStudent struct {
	ID       StudentID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}

// Public returns the view of s that is safe to hand to callers.
func (s *Student) Public() *PublicStudent {
	return &PublicStudent{
		ID:       s.ID,
		Username: s.Username,
		Email:    s.Email,
	}
}

// HasCourse reports whether the student is enrolled in a course with the same id.
func (s *Student) HasCourse(course Course) bool {
	for _, c := range s.EnrolledCourses {
		if c.SameID(course) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of s
func (s *Student) Clone() *Student {
	out := *s
	out.EnrolledCourses = make([]Course, len(s.EnrolledCourses))
	for i, c := range s.EnrolledCourses {
		out.EnrolledCourses[i] = c.Clone()
	}
	return &out
}

// CloneStudents deep-copies a collection, preserving order.
func CloneStudents(students []*Student) []*Student {
	out := make([]*Student, len(students))
	for i, s := range students {
		out[i] = s.Clone()
	}
	return out
}

// FindStudent returns the student with the given id, or nil.
func FindStudent(students []*Student, id StudentID) *Student {
	for _, s := range students {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// FindStudentByUsername returns the student with exactly this username, or nil.
func FindStudentByUsername(students []*Student, username string) *Student {
	for _, s := range students {
		if s.Username == username {
			return s
		}
	}
	return nil
}

// NextStudentID returns one more than the largest id in the collection,
// or 1 for an empty collection.
func NextStudentID(students []*Student) StudentID {
	var maxID StudentID
	for _, s := range students {
		if s.ID > maxID {
			maxID = s.ID
		}
	}
	return maxID + 1
}

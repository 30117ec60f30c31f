package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newCoursesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "courses",
		Short: "List the course catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result CourseList

			if err := client.Get(cmd.Context(), "/courses", &result); err != nil {
				return err
			}

			NewOutput(cmd.OutOrStdout(), cfg.Output).Print(result)
			return nil
		},
	}
}

func newTestimonialsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "testimonials",
		Short: "Show two random testimonials",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []json.RawMessage

			if err := client.Get(cmd.Context(), "/testimonials", &result); err != nil {
				return err
			}

			NewOutput(cmd.OutOrStdout(), cfg.Output).Print(result)
			return nil
		},
	}
}

func newEnrollmentsCmd() *cobra.Command {
	var student int

	cmd := &cobra.Command{
		Use:   "enrollments",
		Short: "List a student's enrolled courses",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cfg.ResolveStudent(student)
			if err != nil {
				return err
			}

			var result CourseList
			if err := client.Get(cmd.Context(), fmt.Sprintf("/student_courses/%d", id), &result); err != nil {
				return err
			}

			NewOutput(cmd.OutOrStdout(), cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&student, "student", 0, "Student id (default: last login)")

	return cmd
}

func newEnrollCmd() *cobra.Command {
	return newCourseMutationCmd("enroll", "Enroll a student in a course")
}

func newDropCmd() *cobra.Command {
	return newCourseMutationCmd("drop", "Drop a course from a student's enrollments")
}

// newCourseMutationCmd builds enroll and drop, which share flags and a body shape
func newCourseMutationCmd(action, short string) *cobra.Command {
	var (
		student    int
		courseID   string
		courseJSON string
	)

	cmd := &cobra.Command{
		Use:   action,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cfg.ResolveStudent(student)
			if err != nil {
				return err
			}

			body, err := courseBody(courseID, courseJSON)
			if err != nil {
				return err
			}

			var result MessageResult
			if err := client.Post(cmd.Context(), fmt.Sprintf("/%s/%d", action, id), body, &result); err != nil {
				return err
			}

			NewOutput(cmd.OutOrStdout(), cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&student, "student", 0, "Student id (default: last login)")
	cmd.Flags().StringVar(&courseID, "course-id", "", "Course id, sent as a JSON string")
	cmd.Flags().StringVar(&courseJSON, "course", "", `Full course object as JSON, e.g. '{"id":1,"name":"Calculus"}'`)
	cmd.MarkFlagsMutuallyExclusive("course-id", "course")
	cmd.MarkFlagsOneRequired("course-id", "course")

	return cmd
}

// courseBody builds the request body from either flag form
func courseBody(courseID, courseJSON string) (json.RawMessage, error) {
	if courseJSON != "" {
		if !json.Valid([]byte(courseJSON)) {
			return nil, errors.New("--course is not valid JSON")
		}
		return json.RawMessage(courseJSON), nil
	}
	data, err := json.Marshal(map[string]string{"id": courseID})
	if err != nil {
		return nil, err
	}
	return data, nil
}

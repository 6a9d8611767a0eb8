package service

import (
	"context"
	"sort"
	"strings"

	"taskbit/internal/repository"
)

// CourseService lists the course labels a user has put on tasks.
type CourseService struct {
	store *repository.Store
}

func NewCourseService(store *repository.Store) *CourseService {
	return &CourseService{store: store}
}

// List returns the requester's course labels, de-duplicated ignoring case and sorted.
func (s *CourseService) List(ctx context.Context, requesterID uint) ([]string, error) {
	user, err := requireUser(ctx, s.store, requesterID)
	if err != nil {
		return nil, err
	}
	raw, err := s.store.Tasks.ListCourses(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(raw))
	courses := make([]string, 0, len(raw))
	for _, course := range raw {
		course = strings.TrimSpace(course)
		key := strings.ToLower(course)
		if course == "" || seen[key] {
			continue
		}
		seen[key] = true
		courses = append(courses, course)
	}
	sort.Slice(courses, func(i, j int) bool {
		return strings.ToLower(courses[i]) < strings.ToLower(courses[j])
	})
	return courses, nil
}

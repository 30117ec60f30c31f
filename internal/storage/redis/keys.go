package redis

import "fmt"

// studentsKey returns the Redis key holding the whole student collection
func studentsKey(prefix string) string {
	return fmt.Sprintf("%s:students", prefix)
}

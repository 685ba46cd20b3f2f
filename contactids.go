package letterpdf

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var contactIDList = regexp.MustCompile(`^[0-9]+(,[0-9]+)*$`)

// ParseContactIDs parses "1" or "1, 2,3" into ids in first-seen order,
// dropping duplicates.
func ParseContactIDs(s string) ([]int64, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	normalized := strings.Join(parts, ",")
	if !contactIDList.MatchString(normalized) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidContactIDs, s)
	}

	ids := make([]int64, 0, len(parts))
	seen := make(map[int64]bool, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidContactIDs, p)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}

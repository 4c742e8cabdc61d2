package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is an ordered numeric triple parsed from a dotted version string.
type Version [3]int

// Parse converts a dotted version string ("1.4.2") into a Version.
// Missing components default to zero.
func Parse(s string) (Version, error) {
	const op = "version.Parse"

	var v Version

	parts := strings.Split(s, ".")
	if len(parts) == 0 || len(parts) > 3 {
		return Version{}, fmt.Errorf("%s: invalid version %q", op, s)
	}

	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Version{}, fmt.Errorf("%s: invalid version %q: %w", op, s, err)
		}
		v[i] = n
	}

	return v, nil
}

// Compare is a plain three-way comparator: negative when a < b,
// zero when equal, positive when a > b.
func Compare(a, b Version) int {
	for i := 0; i < 3; i++ {
		if a[i] != b[i] {
			return a[i] - b[i]
		}
	}
	return 0
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v[0], v[1], v[2])
}

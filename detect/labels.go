package detect

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Labels maps detector class indexes to display names.  The index into the
// slice is the Class of a Result.
type Labels []string

// Name returns the display name for a class index.  Out of range indexes
// return a numeric placeholder instead of panicking, since detector output
// and label files can disagree.
func (l Labels) Name(class int) string {

	if class < 0 || class >= len(l) {
		return fmt.Sprintf("class-%d", class)
	}

	return l[class]
}

// LoadLabels reads the class labels used by the detector from the given
// text file, one label per line in class index order.  Lines are
// whitespace trimmed but otherwise kept as is, blank lines included, so
// the slice index stays aligned with the file line number.
func LoadLabels(file string) (Labels, error) {

	f, err := os.Open(file)

	if err != nil {
		return nil, fmt.Errorf("error opening labels file: %w", err)
	}

	defer f.Close()

	scanner := bufio.NewScanner(f)

	var labels Labels

	for scanner.Scan() {
		labels = append(labels, strings.TrimSpace(scanner.Text()))
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading labels file: %w", err)
	}

	return labels, nil
}

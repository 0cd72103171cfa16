// Package survey reports which notification categories occur in a set
// of archives. It never touches the store.
package survey

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/nhle/bugzilla-recovery/internal/bugmail"
	"github.com/nhle/bugzilla-recovery/internal/source"
)

// Count is how often one category was seen.
type Count struct {
	Category    bugmail.Category
	Eligibility bugmail.Eligibility
	Messages    int
}

// Categories reads every message of archives and returns the distinct
// categories sorted by name, with the absent category first. Messages
// whose header cannot be read are counted under the absent category.
func Categories(ctx context.Context, archives []source.Archive) ([]Count, error) {
	seen := make(map[bugmail.Category]int)
	for _, a := range archives {
		for {
			raw, err := a.Next(ctx)
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return nil, fmt.Errorf("reading %s: %w", a.Name(), err)
			}

			category, err := bugmail.ReadCategory(raw)
			if err != nil {
				category = bugmail.CategoryNone
			}
			seen[category]++
		}
	}

	counts := make([]Count, 0, len(seen))
	for c, n := range seen {
		counts = append(counts, Count{Category: c, Eligibility: c.Eligibility(), Messages: n})
	}
	sort.Slice(counts, func(i, j int) bool {
		return counts[i].Category < counts[j].Category
	})
	return counts, nil
}

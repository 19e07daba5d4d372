package reports

import (
	"context"
	"fmt"
	"slices"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// CategoryExpander widens category filters to whole subtrees.
type CategoryExpander struct {
	tree CategoryTree
}

// NewCategoryExpander creates a new category expander.
func NewCategoryExpander(tree CategoryTree) *CategoryExpander {
	return &CategoryExpander{tree: tree}
}

// Expand returns ids plus every descendant category, deduplicated and sorted.
// Each category is expanded at most once, so a cyclic hierarchy still terminates.
func (e *CategoryExpander) Expand(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	ctx, span := tracer.Start(ctx, "reports.expand_categories",
		trace.WithAttributes(attribute.Int("categories.requested", len(ids))))
	defer span.End()

	visited := make(map[int64]struct{}, len(ids))
	queue := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := visited[id]; ok {
			continue
		}
		visited[id] = struct{}{}
		queue = append(queue, id)
	}

	for len(queue) > 0 {
		parent := queue[0]
		queue = queue[1:]

		children, err := e.tree.ChildCategories(ctx, parent)
		if err != nil {
			return nil, fmt.Errorf("child categories of %d: %w", parent, err)
		}
		for _, child := range children {
			if _, ok := visited[child]; ok {
				continue
			}
			visited[child] = struct{}{}
			queue = append(queue, child)
		}
	}

	result := make([]int64, 0, len(visited))
	for id := range visited {
		result = append(result, id)
	}
	slices.Sort(result)

	span.SetAttributes(attribute.Int("categories.expanded", len(result)))
	return result, nil
}

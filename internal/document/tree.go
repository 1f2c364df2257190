package document

import (
	"strings"

	"github.com/ctxpack/ctxpack/internal/types"
)

const (
	treeBranchConnector = "├── "
	treeLastConnector   = "└── "
	treeBranchPadding   = "│   "
	treeLastPadding     = "    "
)

// RenderTree renders pre-order walk entries as a connector-style diagram rooted at
// rootName. The entry order fixes the diagram; sibling position decides the connector.
func RenderTree(rootName string, entries []types.WalkEntry) string {
	var builder strings.Builder
	builder.WriteString(rootName)
	builder.WriteString("/\n")
	renderSubtree(&builder, entries, 0, len(entries), 0, "")
	return builder.String()
}

// renderSubtree renders the entries in [start, end) that sit at depth, recursing into
// each directory's child range.
func renderSubtree(builder *strings.Builder, entries []types.WalkEntry, start, end, depth int, prefix string) {
	siblingIndexes := make([]int, 0)
	for index := start; index < end; index++ {
		if entries[index].Depth == depth {
			siblingIndexes = append(siblingIndexes, index)
		}
	}

	for position, entryIndex := range siblingIndexes {
		isLast := position == len(siblingIndexes)-1
		connector := treeBranchConnector
		childPrefix := prefix + treeBranchPadding
		if isLast {
			connector = treeLastConnector
			childPrefix = prefix + treeLastPadding
		}

		entry := entries[entryIndex]
		builder.WriteString(prefix)
		builder.WriteString(connector)
		builder.WriteString(entry.Name)
		if entry.IsDir {
			builder.WriteString("/")
		}
		builder.WriteString("\n")

		if entry.IsDir {
			childEnd := end
			if position+1 < len(siblingIndexes) {
				childEnd = siblingIndexes[position+1]
			}
			renderSubtree(builder, entries, entryIndex+1, childEnd, depth+1, childPrefix)
		}
	}
}

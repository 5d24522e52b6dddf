package service

import (
	"fmt"

	"catalog-backend/internal/domains/entity/model"
)

// OrderCreates reorders the creates bucket so that any row whose parent is
// also being created in this batch comes after that parent. Rows with no
// intra-batch parent keep their relative file order.
//
// Single-pass depth-first emission: each row's parent row (when present in
// the batch) is visited first. The visited set, marked before recursing,
// guarantees single emission and termination even on cyclic input; the
// validator has already turned cycles into errors, this is just a floor.
func OrderCreates(creates []model.ParsedRow) []model.ParsedRow {
	byID := make(map[string]int, len(creates))
	for i, row := range creates {
		if row.FileID != "" {
			byID[row.FileID] = i
		}
	}

	visited := make(map[string]bool, len(creates))
	ordered := make([]model.ParsedRow, 0, len(creates))

	var visit func(i int)
	visit = func(i int) {
		key := rowKey(creates[i])
		if visited[key] {
			return
		}
		visited[key] = true

		if parent := creates[i].ParentID; parent != "" {
			if j, ok := byID[parent]; ok {
				visit(j)
			}
		}
		ordered = append(ordered, creates[i])
	}

	for i := range creates {
		visit(i)
	}
	return ordered
}

// rowKey identifies a create row by its declared file id, falling back to
// the sheet row number for id-less rows (nothing can depend on those).
func rowKey(row model.ParsedRow) string {
	if row.FileID != "" {
		return row.FileID
	}
	return fmt.Sprintf("row:%d", row.RowIndex)
}

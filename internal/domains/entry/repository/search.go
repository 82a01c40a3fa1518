package repository

import (
	"fmt"
	"strings"

	"github.com/lib/pq"

	"elog-backend/internal/domains/entry/model"
	"elog-backend/internal/shared/utils"
)

// filterBuilder accumulates WHERE clauses with positional args, mirroring
// the criteria conjunction of the anchored search: every sub-query shares
// the same base filter and adds its own anchor/date bounds.
type filterBuilder struct {
	clauses []string
	args    []interface{}
}

func (b *filterBuilder) add(clause string, args ...interface{}) {
	placeholders := make([]interface{}, len(args))
	for i := range args {
		b.args = append(b.args, args[i])
		placeholders[i] = len(b.args)
	}
	b.clauses = append(b.clauses, fmt.Sprintf(clause, placeholders...))
}

func (b *filterBuilder) where() string {
	return utils.JoinWithAnd(b.clauses)
}

// clone lets the two sub-queries extend the base filter independently.
func (b *filterBuilder) clone() *filterBuilder {
	cp := &filterBuilder{
		clauses: make([]string, len(b.clauses)),
		args:    make([]interface{}, len(b.args)),
	}
	copy(cp.clauses, b.clauses)
	copy(cp.args, b.args)
	return cp
}

// buildBaseFilter translates the query filters into the shared WHERE
// conjunction. Entries with a supersede pointer are always excluded: only
// the latest version of any chain is searchable.
func buildBaseFilter(q *model.QueryWithAnchor) *filterBuilder {
	b := &filterBuilder{}

	if len(q.Logbooks) > 0 {
		b.add("logbooks && $%d", pq.Array(q.Logbooks))
	}
	if q.OriginID != nil {
		b.add("origin_id = $%d", *q.OriginID)
	}
	if len(q.Tags) > 0 {
		if q.RequireAllTags {
			b.add("tags @> $%d", pq.Array(q.Tags))
		} else {
			b.add("tags && $%d", pq.Array(q.Tags))
		}
	}
	if q.HideSummaries {
		b.add("summarizes_shift_id IS NULL")
	}
	if len(q.Authors) > 0 {
		b.add("user_name = ANY($%d)", pq.Array(q.Authors))
	}
	if q.Search != "" {
		b.add(
			"to_tsvector('simple', title || ' ' || text) @@ to_tsquery('simple', $%d)",
			anyWordQuery(q.Search),
		)
	}

	b.add("superseded_by IS NULL")
	return b
}

// anyWordQuery tokenizes the free-text search into an OR tsquery: any word
// matching is enough.
func anyWordQuery(search string) string {
	words := strings.Fields(search)
	escaped := make([]string, 0, len(words))
	for _, w := range words {
		// strip tsquery operators from user input
		w = strings.Map(func(r rune) rune {
			switch r {
			case '&', '|', '!', '(', ')', ':', '\'', '*':
				return -1
			}
			return r
		}, w)
		if w != "" {
			escaped = append(escaped, w)
		}
	}
	return strings.Join(escaped, " | ")
}

// Package query assembles parameterized WHERE predicates for bookmark search.
// User values only ever travel as bound arguments.
package query

import (
	"strings"

	"github.com/wadjakorntonsri/go-bookmarks/pkg/core/tagcodec"
)

// Combinator joins per-tag membership tests
type Combinator int

const (
	And Combinator = iota
	Or
)

func (c Combinator) String() string {
	if c == Or {
		return "OR"
	}
	return "AND"
}

// Clause renders one parenthesized predicate and its arguments in placeholder order
type Clause interface {
	Render() (string, []any)
}

// TextClause matches a free-text query against url, title, tags and description
type TextClause struct {
	Query string
}

var textColumns = []string{"URL", "metadata", "tags", `"desc"`}

func (c TextClause) Render() (string, []any) {
	pattern := "%" + escapeLike(c.Query) + "%"

	conds := make([]string, len(textColumns))
	args := make([]any, len(textColumns))
	for i, col := range textColumns {
		conds[i] = col + ` LIKE ? ESCAPE '\'`
		args[i] = pattern
	}
	return "(" + strings.Join(conds, " OR ") + ")", args
}

// TagClause tests membership of each tag in the stored tag field.
// instr is an exact, case-sensitive substring test, so LIKE wildcards in
// tag names cannot produce false matches.
type TagClause struct {
	Tags       []string
	Combinator Combinator
}

func (c TagClause) Render() (string, []any) {
	conds := make([]string, len(c.Tags))
	args := make([]any, len(c.Tags))
	for i, tag := range c.Tags {
		conds[i] = "instr(tags, ?) > 0"
		args[i] = tagcodec.Pattern(tag)
	}
	return "(" + strings.Join(conds, " "+c.Combinator.String()+" ") + ")", args
}

// Filter is a rendered predicate ready to follow WHERE
type Filter struct {
	Where string
	Args  []any
}

// Build turns optional search criteria into a Filter. ok is false when there
// is nothing to filter on and the caller should list everything instead.
func Build(text string, tags []string, combinator Combinator) (f Filter, ok bool) {
	var clauses []Clause
	if text != "" {
		clauses = append(clauses, TextClause{Query: text})
	}
	if len(tags) > 0 {
		clauses = append(clauses, TagClause{Tags: tags, Combinator: combinator})
	}
	if len(clauses) == 0 {
		return Filter{}, false
	}
	return Combine(clauses...), true
}

// Combine joins clauses with AND at the top level
func Combine(clauses ...Clause) Filter {
	parts := make([]string, 0, len(clauses))
	var args []any
	for _, c := range clauses {
		sql, a := c.Render()
		parts = append(parts, sql)
		args = append(args, a...)
	}
	return Filter{Where: strings.Join(parts, " AND "), Args: args}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

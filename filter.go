package accessmatrix

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xraph/accessmatrix/rule"
)

// filterAll is the explicit "no restriction" value for subject type and
// permission filters.
const filterAll = "all"

type compiledFilter struct {
	subjectType rule.SubjectType // empty matches any
	module      string
	permission  rule.Permission // empty matches any
	search      string
}

func (f ListFilter) compile() (compiledFilter, error) {
	var cf compiledFilter

	switch st := strings.ToLower(strings.TrimSpace(f.SubjectType)); st {
	case "", filterAll:
	default:
		if !rule.SubjectType(st).Valid() {
			return cf, fmt.Errorf("%w: %q", ErrInvalidSubjectType, f.SubjectType)
		}
		cf.subjectType = rule.SubjectType(st)
	}

	switch p := strings.ToLower(strings.TrimSpace(f.Permission)); p {
	case "", filterAll:
	default:
		perm, ok := rule.ParsePermission(p)
		if !ok {
			return cf, fmt.Errorf("%w: unrecognized permission filter %q", ErrValidation, f.Permission)
		}
		cf.permission = perm
	}

	cf.module = strings.ToLower(strings.TrimSpace(f.Module))
	cf.search = strings.ToLower(strings.TrimSpace(f.Search))
	return cf, nil
}

func (cf compiledFilter) matches(r *rule.Rule) bool {
	if cf.subjectType != "" && r.SubjectType != cf.subjectType {
		return false
	}
	if cf.permission != "" && r.Permission != cf.permission {
		return false
	}
	if cf.module != "" && !strings.Contains(strings.ToLower(r.Module), cf.module) {
		return false
	}
	if cf.search == "" {
		return true
	}
	for _, field := range []string{
		strconv.FormatInt(r.ID, 10),
		string(r.SubjectType),
		r.SubjectDisplay,
		r.Module,
		string(r.Permission),
	} {
		if strings.Contains(strings.ToLower(field), cf.search) {
			return true
		}
	}
	return false
}

// paginate slices the page-th page (1-based) out of rules. Callers guarantee
// page >= 1 and pageSize >= 1.
func paginate(rules []*rule.Rule, page, pageSize int) *Page {
	total := len(rules)
	p := &Page{
		Items:    []*rule.Rule{},
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
	// Compare in page units so huge page numbers cannot overflow the offset.
	if page-1 >= (total+pageSize-1)/pageSize {
		return p
	}
	start := (page - 1) * pageSize
	end := start + pageSize
	if end > total || end < start {
		end = total
	}
	p.Items = rules[start:end]
	return p
}

package query

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/NaufalAlfiR/task-management-system/internal/models"
)

type SortKey string

const (
	SortCreatedAt SortKey = "createdAt"
	SortDueDate   SortKey = "dueDate"
	SortPriority  SortKey = "priority"
	SortTitle     SortKey = "title"
)

type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// Filter describes one task list request. Nil/empty fields impose no
// constraint; set fields are ANDed together.
type Filter struct {
	Completed *bool
	Priority  *models.Priority
	Category  *models.Category
	Search    string
	SortBy    SortKey
	Order     SortOrder
}

// Params holds the raw query-string values before validation.
type Params struct {
	Status   string // "pending" or "completed"
	Priority string
	Category string
	Search   string
	SortBy   string
	Order    string
}

// InvalidFilterError names the query parameter that failed validation.
type InvalidFilterError struct {
	Field string
	Value string
}

func (e *InvalidFilterError) Error() string {
	return fmt.Sprintf("invalid %s value %q", e.Field, e.Value)
}

// ParseFilter validates raw query parameters into a Filter. Unrecognized
// values are rejected rather than silently ignored, so a typo in a filter
// never returns an unfiltered list.
func ParseFilter(p Params) (Filter, error) {
	filter := Filter{
		Search: strings.TrimSpace(p.Search),
		SortBy: SortCreatedAt,
		Order:  OrderDesc,
	}

	switch p.Status {
	case "":
	case "pending":
		completed := false
		filter.Completed = &completed
	case "completed":
		completed := true
		filter.Completed = &completed
	default:
		return Filter{}, &InvalidFilterError{Field: "status", Value: p.Status}
	}

	if p.Priority != "" {
		priority := models.Priority(p.Priority)
		if !priority.Valid() {
			return Filter{}, &InvalidFilterError{Field: "priority", Value: p.Priority}
		}
		filter.Priority = &priority
	}

	if p.Category != "" {
		category := models.Category(p.Category)
		if !category.Valid() {
			return Filter{}, &InvalidFilterError{Field: "category", Value: p.Category}
		}
		filter.Category = &category
	}

	switch SortKey(p.SortBy) {
	case "":
	case SortCreatedAt, SortDueDate, SortPriority, SortTitle:
		filter.SortBy = SortKey(p.SortBy)
	default:
		return Filter{}, &InvalidFilterError{Field: "sort", Value: p.SortBy}
	}

	switch SortOrder(p.Order) {
	case "":
	case OrderAsc, OrderDesc:
		filter.Order = SortOrder(p.Order)
	default:
		return Filter{}, &InvalidFilterError{Field: "order", Value: p.Order}
	}

	return filter, nil
}

// Apply filters, searches, and sorts the given tasks. The caller is expected
// to pass only one owner's tasks; ownership itself is enforced by the store,
// not here.
func Apply(tasks []models.Task, f Filter) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	search := strings.ToLower(f.Search)
	for _, task := range tasks {
		if f.Completed != nil && task.Completed != *f.Completed {
			continue
		}
		if f.Priority != nil && task.Priority != *f.Priority {
			continue
		}
		if f.Category != nil && task.Category != *f.Category {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(task.Title), search) &&
			!strings.Contains(strings.ToLower(task.Description), search) {
			continue
		}
		out = append(out, task)
	}

	desc := f.Order == OrderDesc
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if f.SortBy == SortDueDate {
			// Tasks without a due date sort last in both directions.
			an, bn := a.DueDate == nil, b.DueDate == nil
			if an != bn {
				return bn
			}
		}
		cmp := compare(a, b, f.SortBy)
		if cmp == 0 {
			// Ties always break by ascending id, regardless of direction.
			return a.ID < b.ID
		}
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
	return out
}

func compare(a, b models.Task, key SortKey) int {
	switch key {
	case SortDueDate:
		if a.DueDate == nil || b.DueDate == nil {
			return 0
		}
		return compareTime(*a.DueDate, *b.DueDate)
	case SortPriority:
		return a.Priority.Rank() - b.Priority.Rank()
	case SortTitle:
		return strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	default:
		return compareTime(a.CreatedAt, b.CreatedAt)
	}
}

func compareTime(a, b time.Time) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}

// Summary aggregates one owner's tasks for the stats endpoint.
type Summary struct {
	Total      int                     `json:"total"`
	Completed  int                     `json:"completed"`
	Pending    int                     `json:"pending"`
	Overdue    int                     `json:"overdue"`
	ByPriority map[models.Priority]int `json:"by_priority"`
	ByCategory map[models.Category]int `json:"by_category"`
}

func Stats(tasks []models.Task) Summary {
	summary := Summary{
		ByPriority: map[models.Priority]int{},
		ByCategory: map[models.Category]int{},
	}
	now := time.Now()
	for _, task := range tasks {
		summary.Total++
		if task.Completed {
			summary.Completed++
		} else {
			summary.Pending++
			if task.DueDate != nil && task.DueDate.Before(now) {
				summary.Overdue++
			}
		}
		summary.ByPriority[task.Priority]++
		summary.ByCategory[task.Category]++
	}
	return summary
}

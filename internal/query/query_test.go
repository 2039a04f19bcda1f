package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NaufalAlfiR/task-management-system/internal/models"
)

func task(id int, title string, opts ...func(*models.Task)) models.Task {
	t := models.Task{
		ID:        id,
		UserID:    1,
		Title:     title,
		Priority:  models.PriorityMedium,
		Category:  models.CategoryOther,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(id) * time.Hour),
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

func withPriority(p models.Priority) func(*models.Task) {
	return func(t *models.Task) { t.Priority = p }
}

func withCategory(c models.Category) func(*models.Task) {
	return func(t *models.Task) { t.Category = c }
}

func withCompleted() func(*models.Task) {
	return func(t *models.Task) { t.Completed = true }
}

func withDue(due time.Time) func(*models.Task) {
	return func(t *models.Task) { t.DueDate = &due }
}

func withCreated(at time.Time) func(*models.Task) {
	return func(t *models.Task) { t.CreatedAt = at }
}

func ids(tasks []models.Task) []int {
	out := make([]int, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestParseFilterDefaults(t *testing.T) {
	filter, err := ParseFilter(Params{})
	require.NoError(t, err)
	assert.Nil(t, filter.Completed)
	assert.Nil(t, filter.Priority)
	assert.Nil(t, filter.Category)
	assert.Equal(t, SortCreatedAt, filter.SortBy)
	assert.Equal(t, OrderDesc, filter.Order)
}

func TestParseFilterValues(t *testing.T) {
	filter, err := ParseFilter(Params{
		Status:   "pending",
		Priority: "urgent",
		Category: "work",
		Search:   "  doc  ",
		SortBy:   "title",
		Order:    "asc",
	})
	require.NoError(t, err)
	require.NotNil(t, filter.Completed)
	assert.False(t, *filter.Completed)
	assert.Equal(t, models.PriorityUrgent, *filter.Priority)
	assert.Equal(t, models.CategoryWork, *filter.Category)
	assert.Equal(t, "doc", filter.Search)
	assert.Equal(t, SortTitle, filter.SortBy)
	assert.Equal(t, OrderAsc, filter.Order)
}

// Unrecognized filter values are rejected, never silently ignored.
func TestParseFilterRejectsUnknownValues(t *testing.T) {
	cases := []struct {
		name   string
		params Params
		field  string
	}{
		{"status", Params{Status: "done"}, "status"},
		{"priority", Params{Priority: "extreme"}, "priority"},
		{"category", Params{Category: "hobby"}, "category"},
		{"sort", Params{SortBy: "owner"}, "sort"},
		{"order", Params{Order: "sideways"}, "order"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseFilter(tc.params)
			require.Error(t, err)
			var ferr *InvalidFilterError
			require.ErrorAs(t, err, &ferr)
			assert.Equal(t, tc.field, ferr.Field)
		})
	}
}

func TestApplyFiltersAreANDed(t *testing.T) {
	tasks := []models.Task{
		task(1, "urgent work", withPriority(models.PriorityUrgent), withCategory(models.CategoryWork)),
		task(2, "urgent other", withPriority(models.PriorityUrgent)),
		task(3, "low work", withPriority(models.PriorityLow), withCategory(models.CategoryWork)),
	}

	urgent := models.PriorityUrgent
	work := models.CategoryWork
	out := Apply(tasks, Filter{Priority: &urgent, Category: &work, SortBy: SortCreatedAt, Order: OrderAsc})
	assert.Equal(t, []int{1}, ids(out))
}

func TestApplyStatusFilter(t *testing.T) {
	tasks := []models.Task{
		task(1, "open"),
		task(2, "closed", withCompleted()),
	}

	completed := true
	out := Apply(tasks, Filter{Completed: &completed, Order: OrderAsc})
	assert.Equal(t, []int{2}, ids(out))

	completed = false
	out = Apply(tasks, Filter{Completed: &completed, Order: OrderAsc})
	assert.Equal(t, []int{1}, ids(out))
}

func TestApplySearchCaseInsensitive(t *testing.T) {
	tasks := []models.Task{
		task(1, "Complete project documentation"),
		task(2, "Review security"),
	}

	out := Apply(tasks, Filter{Search: "doc", Order: OrderAsc})
	assert.Equal(t, []int{1}, ids(out))

	// Matches the description too.
	withDesc := task(3, "Misc")
	withDesc.Description = "update the DOCS"
	out = Apply(append(tasks, withDesc), Filter{Search: "doc", Order: OrderAsc})
	assert.Equal(t, []int{1, 3}, ids(out))
}

func TestApplySortStableTiesByAscendingID(t *testing.T) {
	same := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	tasks := []models.Task{
		task(3, "c", withCreated(same)),
		task(1, "a", withCreated(same)),
		task(2, "b", withCreated(same)),
	}

	// Equal sort keys keep ascending-id order in both directions.
	out := Apply(tasks, Filter{SortBy: SortCreatedAt, Order: OrderAsc})
	assert.Equal(t, []int{1, 2, 3}, ids(out))

	out = Apply(tasks, Filter{SortBy: SortCreatedAt, Order: OrderDesc})
	assert.Equal(t, []int{1, 2, 3}, ids(out))
}

func TestApplySortPriority(t *testing.T) {
	tasks := []models.Task{
		task(1, "low", withPriority(models.PriorityLow)),
		task(2, "urgent", withPriority(models.PriorityUrgent)),
		task(3, "high", withPriority(models.PriorityHigh)),
	}

	out := Apply(tasks, Filter{SortBy: SortPriority, Order: OrderDesc})
	assert.Equal(t, []int{2, 3, 1}, ids(out))

	out = Apply(tasks, Filter{SortBy: SortPriority, Order: OrderAsc})
	assert.Equal(t, []int{1, 3, 2}, ids(out))
}

func TestApplySortTitle(t *testing.T) {
	tasks := []models.Task{
		task(1, "banana"),
		task(2, "Apple"),
		task(3, "cherry"),
	}

	out := Apply(tasks, Filter{SortBy: SortTitle, Order: OrderAsc})
	assert.Equal(t, []int{2, 1, 3}, ids(out))
}

func TestApplySortDueDateNilsLast(t *testing.T) {
	soon := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	later := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	tasks := []models.Task{
		task(1, "no due"),
		task(2, "later", withDue(later)),
		task(3, "soon", withDue(soon)),
	}

	out := Apply(tasks, Filter{SortBy: SortDueDate, Order: OrderAsc})
	assert.Equal(t, []int{3, 2, 1}, ids(out))

	// Undated tasks stay last even when the direction flips.
	out = Apply(tasks, Filter{SortBy: SortDueDate, Order: OrderDesc})
	assert.Equal(t, []int{2, 3, 1}, ids(out))
}

func TestStats(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)
	tasks := []models.Task{
		task(1, "open urgent", withPriority(models.PriorityUrgent)),
		task(2, "done", withCompleted()),
		task(3, "overdue", withDue(past)),
		task(4, "due later", withDue(future)),
		task(5, "done overdue", withCompleted(), withDue(past)),
	}

	summary := Stats(tasks)
	assert.Equal(t, 5, summary.Total)
	assert.Equal(t, 2, summary.Completed)
	assert.Equal(t, 3, summary.Pending)
	// Completed tasks are never overdue.
	assert.Equal(t, 1, summary.Overdue)
	assert.Equal(t, 1, summary.ByPriority[models.PriorityUrgent])
	assert.Equal(t, 4, summary.ByPriority[models.PriorityMedium])
	assert.Equal(t, 5, summary.ByCategory[models.CategoryOther])
}

package console

import (
	"errors"
	"net/url"
	"strconv"
	"time"
)

// StatusAll disables status filtering.
const StatusAll = "all"

const filterDateLayout = "2006-01-02"

// Filters is the combined filter state of the order screen. StartDate and
// EndDate are calendar dates, both inclusive.
type Filters struct {
	Status    string
	Search    string
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	Limit     int
}

// Validate rejects filter combinations the backend would refuse, so bad
// input fails before a request is issued.
func (f Filters) Validate() error {
	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
		return errors.New("console: start date must not be after end date")
	}
	return nil
}

// ClampPage constrains the page to [1, totalPages]; a zero totalPages keeps
// page 1 so an empty result set stays addressable.
func (f *Filters) ClampPage(totalPages int) {
	if f.Page < 1 {
		f.Page = 1
	}
	if totalPages > 0 && f.Page > totalPages {
		f.Page = totalPages
	}
}

// query serialises the filters into URL parameters. Paging parameters are
// omitted for whole-set operations such as export.
func (f Filters) query(withPaging bool) url.Values {
	values := url.Values{}
	if f.Status != "" && f.Status != StatusAll {
		values.Set("status", f.Status)
	}
	if f.Search != "" {
		values.Set("search", f.Search)
	}
	if f.StartDate != nil {
		values.Set("startDate", f.StartDate.Format(filterDateLayout))
	}
	if f.EndDate != nil {
		values.Set("endDate", f.EndDate.Format(filterDateLayout))
	}
	if withPaging {
		if f.Page > 0 {
			values.Set("page", strconv.Itoa(f.Page))
		}
		if f.Limit > 0 {
			values.Set("limit", strconv.Itoa(f.Limit))
		}
	}
	return values
}

package model

import "testing"

func TestDefaultQuery(t *testing.T) {
	q := DefaultQuery()
	if q.Page != 1 || q.PageSize != 3 {
		t.Errorf("DefaultQuery = %+v, want page 1 size 3", q)
	}
	if q.Sort != SortNone || q.Order != OrderAsc {
		t.Errorf("DefaultQuery = %+v, want no sort, ascending", q)
	}
}

func TestQueryValuesOmitsEmptySort(t *testing.T) {
	v := DefaultQuery().Values()
	if v.Get("page") != "1" || v.Get("pageSize") != "3" {
		t.Errorf("Values = %v, want page=1 pageSize=3", v)
	}
	if _, present := v["sort"]; present {
		t.Error("sort sent with no sort field selected")
	}
	if v.Get("order") != "asc" {
		t.Errorf("order = %q, want asc", v.Get("order"))
	}
}

func TestQueryValuesWithSort(t *testing.T) {
	q := Query{Page: 2, PageSize: 5, Sort: SortCompleted, Order: OrderDesc}
	v := q.Values()
	if v.Get("sort") != "completed" || v.Get("order") != "desc" {
		t.Errorf("Values = %v, want sort=completed order=desc", v)
	}
	if v.Get("page") != "2" || v.Get("pageSize") != "5" {
		t.Errorf("Values = %v, want page=2 pageSize=5", v)
	}
}

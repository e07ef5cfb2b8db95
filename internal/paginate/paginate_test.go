package paginate

import "testing"

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestRenderPageCounts(t *testing.T) {
	cases := []struct {
		n, size      int
		pages, lastN int
	}{
		{0, 10, 1, 0},
		{1, 10, 1, 1},
		{10, 10, 1, 10},
		{11, 10, 2, 1},
		{25, 10, 3, 5},
		{30, 10, 3, 10},
	}
	for _, tc := range cases {
		items := seq(tc.n)
		first := Render(items, 0, tc.size, InsertionOrder)
		if first.Pages != tc.pages {
			t.Errorf("n=%d: pages = %d, want %d", tc.n, first.Pages, tc.pages)
		}
		last := Render(items, tc.pages-1, tc.size, InsertionOrder)
		if len(last.Items) != tc.lastN {
			t.Errorf("n=%d: last page has %d items, want %d", tc.n, len(last.Items), tc.lastN)
		}
		clamped := Render(items, tc.pages, tc.size, InsertionOrder)
		if clamped.Index != tc.pages-1 || len(clamped.Items) != tc.lastN {
			t.Errorf("n=%d: out-of-range page = index %d with %d items", tc.n, clamped.Index, len(clamped.Items))
		}
	}
}

func TestRenderNavigationFlags(t *testing.T) {
	items := seq(25)
	p := Render(items, 0, 10, InsertionOrder)
	if p.HasPrev || !p.HasNext {
		t.Errorf("first page: prev=%v next=%v", p.HasPrev, p.HasNext)
	}
	p = Render(items, 1, 10, InsertionOrder)
	if !p.HasPrev || !p.HasNext {
		t.Errorf("middle page: prev=%v next=%v", p.HasPrev, p.HasNext)
	}
	p = Render(items, 2, 10, InsertionOrder)
	if !p.HasPrev || p.HasNext {
		t.Errorf("last page: prev=%v next=%v", p.HasPrev, p.HasNext)
	}
	p = Render([]int(nil), 5, 10, InsertionOrder)
	if p.HasPrev || p.HasNext || p.Index != 0 || len(p.Items) != 0 {
		t.Errorf("empty: %+v", p)
	}
	if p = Render(items, -3, 10, InsertionOrder); p.Index != 0 {
		t.Errorf("negative page index = %d", p.Index)
	}
}

func TestRenderOrder(t *testing.T) {
	items := seq(12)
	newest := Render(items, 0, 5, NewestFirst)
	if newest.Items[0] != 11 || newest.Items[4] != 7 {
		t.Errorf("newest first = %v", newest.Items)
	}
	tail := Render(items, 2, 5, NewestFirst)
	if len(tail.Items) != 2 || tail.Items[0] != 1 || tail.Items[1] != 0 {
		t.Errorf("newest first tail = %v", tail.Items)
	}
	if tail.Number() != 3 || tail.Offset(5) != 10 {
		t.Errorf("number=%d offset=%d", tail.Number(), tail.Offset(5))
	}
	if items[0] != 0 || items[11] != 11 {
		t.Error("input slice modified")
	}
}

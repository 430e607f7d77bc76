package verification

import (
	"testing"
)

func TestGetTotalPages(t *testing.T) {
	type args struct {
		totalCount int64
		limit      int64
	}
	tests := []struct {
		name string
		args args
		want int64
	}{
		{
			name: "Test 1",
			args: args{
				totalCount: 10,
				limit:      10,
			},
			want: 1,
		},
		{
			name: "Test 2",
			args: args{
				totalCount: 10,
				limit:      5,
			},
			want: 2,
		},
		{
			name: "Test 3",
			args: args{
				totalCount: 10,
				limit:      3,
			},
			want: 4,
		},
		{
			name: "Test 4",
			args: args{
				totalCount: 0,
				limit:      10,
			},
			want: 0,
		},
		{
			name: "Test 5",
			args: args{
				totalCount: 10,
				limit:      0,
			},
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := getTotalPages(tt.args.totalCount, tt.args.limit); got != tt.want {
				t.Errorf("getTotalPages() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPrepPaginationInfos(t *testing.T) {
	tests := []struct {
		name        string
		totalCount  int64
		page        int64
		limit       int64
		wantPage    int64
		wantPages   int64
		wantPerPage int64
	}{
		{
			name:        "defaults applied",
			totalCount:  25,
			page:        0,
			limit:       0,
			wantPage:    1,
			wantPages:   3,
			wantPerPage: 10,
		},
		{
			name:        "page clamped to last",
			totalCount:  25,
			page:        9,
			limit:       10,
			wantPage:    3,
			wantPages:   3,
			wantPerPage: 10,
		},
		{
			name:        "empty collection",
			totalCount:  0,
			page:        1,
			limit:       10,
			wantPage:    1,
			wantPages:   0,
			wantPerPage: 10,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := prepPaginationInfos(tt.totalCount, tt.page, tt.limit)
			if got.CurrentPage != tt.wantPage {
				t.Errorf("CurrentPage = %v, want %v", got.CurrentPage, tt.wantPage)
			}
			if got.TotalPages != tt.wantPages {
				t.Errorf("TotalPages = %v, want %v", got.TotalPages, tt.wantPages)
			}
			if got.PageSize != tt.wantPerPage {
				t.Errorf("PageSize = %v, want %v", got.PageSize, tt.wantPerPage)
			}
		})
	}
}

package timeutil

import (
	"testing"
	"time"
)

func TestUploadDay(t *testing.T) {
	tests := []struct {
		name      string
		now       time.Time
		offset    int
		wantStart time.Time
		wantKey   string
	}{
		{
			name:      "kst morning",
			now:       time.Date(2024, 3, 5, 1, 30, 0, 0, time.UTC), // 10:30 KST
			offset:    540,
			wantStart: time.Date(2024, 3, 4, 15, 0, 0, 0, time.UTC),
			wantKey:   "2024-03-05",
		},
		{
			name:      "kst late utc evening rolls to next local day",
			now:       time.Date(2024, 3, 5, 16, 0, 0, 0, time.UTC), // 01:00 KST on the 6th
			offset:    540,
			wantStart: time.Date(2024, 3, 5, 15, 0, 0, 0, time.UTC),
			wantKey:   "2024-03-06",
		},
		{
			name:      "utc",
			now:       time.Date(2024, 12, 31, 23, 59, 0, 0, time.UTC),
			offset:    0,
			wantStart: time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
			wantKey:   "2024-12-31",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := UploadDay(tt.now, tt.offset)
			if !w.Start.Equal(tt.wantStart) {
				t.Errorf("Start = %v, want %v", w.Start, tt.wantStart)
			}
			if !w.End.Equal(tt.wantStart.Add(24 * time.Hour)) {
				t.Errorf("End = %v, want %v", w.End, tt.wantStart.Add(24*time.Hour))
			}
			if w.Key != tt.wantKey {
				t.Errorf("Key = %q, want %q", w.Key, tt.wantKey)
			}
			if !w.Contains(tt.now) {
				t.Errorf("window %v..%v does not contain %v", w.Start, w.End, tt.now)
			}
			if w.Contains(w.End) {
				t.Errorf("window must exclude its end")
			}
		})
	}
}

func TestMonthKey(t *testing.T) {
	now := time.Date(2024, 1, 31, 20, 0, 0, 0, time.UTC)
	if got := MonthKey(now, 540); got != "2024-02" {
		t.Fatalf("expected 2024-02, got %s", got)
	}
}

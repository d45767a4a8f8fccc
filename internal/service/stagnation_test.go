package service

import (
	"testing"
	"time"
)

func TestIsStagnant(t *testing.T) {
	t.Parallel()

	now := time.Now()

	cases := []struct {
		name       string
		age        time.Duration
		offerCount int
		want       bool
	}{
		{"fresh request", 10 * time.Minute, 0, false},
		{"exactly one hour", time.Hour, 0, false},
		{"past one hour no offers", 61 * time.Minute, 0, true},
		{"past one hour with offers", 2 * time.Hour, 1, false},
		{"old and busy", 5 * time.Hour, 7, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := IsStagnant(now.Add(-tc.age), tc.offerCount, now)
			if got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

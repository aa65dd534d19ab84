package entities

import (
	"bytes"
	"encoding/gob"
	"time"
)

// OrderSummary is the three-bucket view an owner's orders page renders.
// Each bucket is newest first. Rejected orders appear in no bucket.
type OrderSummary struct {
	Pending   []Order
	Ready     []Order
	Completed []Order
}

// Live returns the actionable orders: the pending bucket followed by the
// ready bucket, each keeping its newest-first order.
func (s OrderSummary) Live() []Order {
	live := make([]Order, 0, len(s.Pending)+len(s.Ready))
	live = append(live, s.Pending...)
	live = append(live, s.Ready...)
	return live
}

// DailyEarnings is one bar of the weekly dashboard chart.
type DailyEarnings struct {
	Day           string
	Date          time.Time
	EarningsCents int64
	IsToday       bool
}

// WeeklySummary holds exactly seven calendar days, oldest first, the last
// one being today.
type WeeklySummary []DailyEarnings

// MaxEarnings returns the largest daily total, but never less than 1 cent,
// so an all-zero week scales to zero-height bars instead of dividing by zero.
func (w WeeklySummary) MaxEarnings() int64 {
	max := int64(1)
	for _, d := range w {
		if d.EarningsCents > max {
			max = d.EarningsCents
		}
	}
	return max
}

func (w WeeklySummary) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(w); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (w *WeeklySummary) Unmarshal(data []byte) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(w)
}

// DashboardStats is the owner landing page view: today's totals plus the
// few most recent orders.
type DashboardStats struct {
	OrdersToday  int
	RevenueCents int64
	RecentOrders []Order
}

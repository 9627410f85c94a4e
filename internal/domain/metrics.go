package domain

import "time"

// MonthlyMetrics is one row of the dashboard's profitability table.
// Counts and the SMS cost are computed by the aggregation job; ad
// spend, COGS and revenue are entered by hand and never overwritten
// by aggregation.
type MonthlyMetrics struct {
	Month           time.Time `json:"month"` // first day of the month, UTC
	NewLeads        int       `json:"new_leads"`
	VouchersClaimed int       `json:"vouchers_claimed"`
	FirstVisits     int       `json:"first_visits"`
	SecondVisits    int       `json:"second_visits"`
	ThirdVisits     int       `json:"third_visits"`
	Stage1SMSCost   float64   `json:"stage1_sms_cost"`
	AdSpend         float64   `json:"ad_spend"`
	COGS            float64   `json:"cogs"`
	Revenue         float64   `json:"revenue"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Profit is revenue minus everything the funnel spent that month.
func (m *MonthlyMetrics) Profit() float64 {
	return m.Revenue - m.AdSpend - m.COGS - m.Stage1SMSCost
}

// FunnelStageStat is one bar of the admin conversion chart.
type FunnelStageStat struct {
	Stage          int     `json:"stage"`
	StageName      string  `json:"stage_name"`
	Count          int     `json:"count"`
	ConversionRate float64 `json:"conversion_rate"` // from previous stage, percent
}

var StageNames = map[int]string{
	StageSignedUp:    "Leads (Signed Up)",
	StageVerified:    "Voucher Claimed (Spicy Marg)",
	StageFirstVisit:  "1st Visit (Spicy Marg Redeemed)",
	StageSecondVisit: "2nd Visit (Icey Marg Redeemed)",
	StageCompleted:   "3rd Visit (Funnel Completed)",
}

package chargepoint

import (
	"sort"
	"time"

	"github.com/ocpp-platform/ocpp-runtime/internal/domain/ocpp16"
)

// SelectActiveProfiles picks, for each purpose, the highest stack-level
// profile whose validity window covers now — the rule the stacked
// profile model uses to collapse several installed profiles for one
// purpose down to the single one that actually applies.
func SelectActiveProfiles(profiles []ocpp16.ChargingProfile, now time.Time) (maxProfile, txDefault, txProfile *ocpp16.ChargingProfile) {
	best := map[ocpp16.ChargingProfilePurpose]*ocpp16.ChargingProfile{}

	for i := range profiles {
		p := &profiles[i]
		if p.ValidFrom != nil && now.Before(p.ValidFrom.Time) {
			continue
		}
		if p.ValidTo != nil && now.After(p.ValidTo.Time) {
			continue
		}
		cur, ok := best[p.ChargingProfilePurpose]
		if !ok || p.StackLevel > cur.StackLevel {
			best[p.ChargingProfilePurpose] = p
		}
	}

	return best[ocpp16.ChargingProfilePurposeChargePointMaxProfile],
		best[ocpp16.ChargingProfilePurposeTxDefaultProfile],
		best[ocpp16.ChargingProfilePurposeTxProfile]
}

// limitAt returns the schedule's limit applicable at offset, the last
// period whose StartPeriod is at or before offset. Periods are assumed
// sorted ascending by StartPeriod, as OCPP requires of a valid schedule.
func limitAt(schedule ocpp16.ChargingSchedule, offset time.Duration) (float64, bool) {
	periods := schedule.ChargingSchedulePeriod
	if len(periods) == 0 {
		return 0, false
	}
	limit := periods[0].Limit
	found := periods[0].StartPeriod <= int(offset.Seconds())
	for _, p := range periods {
		if time.Duration(p.StartPeriod)*time.Second > offset {
			break
		}
		limit = p.Limit
		found = true
	}
	return limit, found
}

func breakpoints(schedules []ocpp16.ChargingSchedule, duration time.Duration) []time.Duration {
	set := map[time.Duration]struct{}{0: {}}
	for _, s := range schedules {
		for _, p := range s.ChargingSchedulePeriod {
			t := time.Duration(p.StartPeriod) * time.Second
			if t >= 0 && t < duration {
				set[t] = struct{}{}
			}
		}
	}
	out := make([]time.Duration, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// CompositeSchedule computes the pointwise minimum of the charge
// point's maximum-power ceiling and whichever transaction-level profile
// applies (TxProfile overriding TxDefaultProfile), over [0, duration) —
// the GetCompositeSchedule response body.
func CompositeSchedule(maxProfile, txDefault, txProfile *ocpp16.ChargingProfile, duration time.Duration, unit ocpp16.ChargingRateUnit) ocpp16.ChargingSchedule {
	var applicable []ocpp16.ChargingSchedule
	if maxProfile != nil {
		applicable = append(applicable, maxProfile.ChargingSchedule)
	}
	tx := txDefault
	if txProfile != nil {
		tx = txProfile
	}
	if tx != nil {
		applicable = append(applicable, tx.ChargingSchedule)
	}

	if len(applicable) == 0 {
		return ocpp16.ChargingSchedule{ChargingRateUnit: unit}
	}

	points := breakpoints(applicable, duration)
	periods := make([]ocpp16.ChargingSchedulePeriod, 0, len(points))
	var lastLimit float64
	haveLast := false

	for _, t := range points {
		limit := -1.0
		any := false
		for _, s := range applicable {
			l, ok := limitAt(s, t)
			if !ok {
				continue
			}
			any = true
			if limit < 0 || l < limit {
				limit = l
			}
		}
		if !any {
			continue
		}
		if haveLast && limit == lastLimit {
			continue
		}
		periods = append(periods, ocpp16.ChargingSchedulePeriod{StartPeriod: int(t.Seconds()), Limit: limit})
		lastLimit = limit
		haveLast = true
	}

	durSec := int(duration.Seconds())
	return ocpp16.ChargingSchedule{
		Duration:               &durSec,
		ChargingRateUnit:       unit,
		ChargingSchedulePeriod: periods,
	}
}

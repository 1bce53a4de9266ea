package chargepoint_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ocpp-platform/ocpp-runtime/internal/chargepoint"
	"github.com/ocpp-platform/ocpp-runtime/internal/domain/ocpp16"
)

func profile(purpose ocpp16.ChargingProfilePurpose, stackLevel int, periods ...ocpp16.ChargingSchedulePeriod) ocpp16.ChargingProfile {
	return ocpp16.ChargingProfile{
		ChargingProfileId:      1,
		StackLevel:             stackLevel,
		ChargingProfilePurpose: purpose,
		ChargingProfileKind:    ocpp16.ChargingProfileKindAbsolute,
		ChargingSchedule: ocpp16.ChargingSchedule{
			ChargingRateUnit:       ocpp16.ChargingRateUnitW,
			ChargingSchedulePeriod: periods,
		},
	}
}

func TestSelectActiveProfilesPicksHighestStackLevel(t *testing.T) {
	now := time.Now()
	low := profile(ocpp16.ChargingProfilePurposeTxDefaultProfile, 0, ocpp16.ChargingSchedulePeriod{StartPeriod: 0, Limit: 10})
	high := profile(ocpp16.ChargingProfilePurposeTxDefaultProfile, 5, ocpp16.ChargingSchedulePeriod{StartPeriod: 0, Limit: 20})

	_, txDefault, _ := chargepoint.SelectActiveProfiles([]ocpp16.ChargingProfile{low, high}, now)
	require.NotNil(t, txDefault)
	assert.Equal(t, 5, txDefault.StackLevel)
}

func TestSelectActiveProfilesRespectsValidityWindow(t *testing.T) {
	now := time.Now()
	future := ocpp16.DateTime{Time: now.Add(time.Hour)}
	notYetValid := profile(ocpp16.ChargingProfilePurposeTxProfile, 0, ocpp16.ChargingSchedulePeriod{StartPeriod: 0, Limit: 10})
	notYetValid.ValidFrom = &future

	_, _, txProfile := chargepoint.SelectActiveProfiles([]ocpp16.ChargingProfile{notYetValid}, now)
	assert.Nil(t, txProfile)
}

func TestCompositeScheduleTakesPointwiseMinimum(t *testing.T) {
	maxProfile := profile(ocpp16.ChargingProfilePurposeChargePointMaxProfile, 0,
		ocpp16.ChargingSchedulePeriod{StartPeriod: 0, Limit: 16})
	txProfile := profile(ocpp16.ChargingProfilePurposeTxProfile, 0,
		ocpp16.ChargingSchedulePeriod{StartPeriod: 0, Limit: 32},
		ocpp16.ChargingSchedulePeriod{StartPeriod: 60, Limit: 8},
	)

	composite := chargepoint.CompositeSchedule(&maxProfile, nil, &txProfile, 120*time.Second, ocpp16.ChargingRateUnitW)

	require.Len(t, composite.ChargingSchedulePeriod, 2)
	assert.Equal(t, 0, composite.ChargingSchedulePeriod[0].StartPeriod)
	assert.Equal(t, 16.0, composite.ChargingSchedulePeriod[0].Limit)
	assert.Equal(t, 60, composite.ChargingSchedulePeriod[1].StartPeriod)
	assert.Equal(t, 8.0, composite.ChargingSchedulePeriod[1].Limit)
}

func TestCompositeScheduleNoApplicableProfilesReturnsEmpty(t *testing.T) {
	composite := chargepoint.CompositeSchedule(nil, nil, nil, time.Minute, ocpp16.ChargingRateUnitW)
	assert.Empty(t, composite.ChargingSchedulePeriod)
}

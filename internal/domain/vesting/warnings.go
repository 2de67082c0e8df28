package vesting

import "fmt"

// WarningCode identifies a class of configuration problem.
type WarningCode string

const (
	WarnZeroTimeUnit        WarningCode = "zero_time_unit"
	WarnAfterCliffOver100   WarningCode = "after_cliff_over_100"
	WarnPeriodSumOver100    WarningCode = "period_sum_over_100"
	WarnNegativeDuration    WarningCode = "negative_duration"
	WarnNegativeAmount      WarningCode = "negative_amount"
	WarnClaimOnLockedPeriod WarningCode = "claim_on_locked_tranche"
	WarnTimeOverflow        WarningCode = "time_overflow"
)

// ConfigurationWarning is a non-fatal problem found while computing a schedule.
// Computation always proceeds with best-effort semantics.
type ConfigurationWarning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}

func (w ConfigurationWarning) Error() string {
	return fmt.Sprintf("vesting configuration: %s", w.Message)
}

func warnf(code WarningCode, format string, args ...any) ConfigurationWarning {
	return ConfigurationWarning{Code: code, Message: fmt.Sprintf(format, args...)}
}

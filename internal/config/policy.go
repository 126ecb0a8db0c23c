package config

import (
	"fmt"
	"math"
	"time"

	"github.com/Veraticus/finpulse/internal/common"
	"github.com/Veraticus/finpulse/internal/model"
	"github.com/spf13/viper"
)

// Policy holds every threshold the scoring engine depends on.
// One Policy is built per deployment and handed to the engine at construction.
type Policy struct {
	IncomeUnit model.IncomeUnit
	// SafeProduct is offered instead of any gated product when the guardrail alerts.
	SafeProduct        string
	HighSpendThreshold float64
	SaverThreshold     float64
	// IncomeNormalizer is the annual income at which the income term of the stability score saturates.
	IncomeNormalizer float64
	// AvgTransactionCeiling bounds the average transaction that still counts as consistent spending.
	AvgTransactionCeiling float64
	// DTIThreshold is the debt-to-income ratio at or above which offers are suppressed.
	// The production value must be confirmed with the compliance owner.
	DTIThreshold float64
	// LowBalanceFloor is the salary-minus-spending balance below which loan and investment
	// products are unsuitable.
	LowBalanceFloor   float64
	ClassifierTimeout time.Duration
}

// Default policy values.
const (
	DefaultHighSpendThreshold = 50_000
	DefaultSaverThreshold     = 20_000
	DefaultIncomeNormalizer   = 2_000_000
	DefaultAvgCeiling         = 50_000
	DefaultDTIThreshold       = 0.45
	DefaultLowBalanceFloor    = 500
	DefaultClassifierTimeout  = 10 * time.Second
)

// DefaultPolicy returns the production scoring policy.
func DefaultPolicy() Policy {
	return Policy{
		HighSpendThreshold:    DefaultHighSpendThreshold,
		SaverThreshold:        DefaultSaverThreshold,
		IncomeNormalizer:      DefaultIncomeNormalizer,
		AvgTransactionCeiling: DefaultAvgCeiling,
		DTIThreshold:          DefaultDTIThreshold,
		LowBalanceFloor:       DefaultLowBalanceFloor,
		SafeProduct:           model.ProductSmartSavingsSIP,
		ClassifierTimeout:     DefaultClassifierTimeout,
		IncomeUnit:            model.IncomeAnnual,
	}
}

// Validate checks that the policy is usable.
func (p Policy) Validate() error {
	finite := func(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

	switch {
	case !finite(p.HighSpendThreshold) || p.HighSpendThreshold < 0:
		return fmt.Errorf("%w: high spend threshold must be non-negative", common.ErrInvalidConfig)
	case !finite(p.SaverThreshold) || p.SaverThreshold < 0:
		return fmt.Errorf("%w: saver threshold must be non-negative", common.ErrInvalidConfig)
	case !finite(p.IncomeNormalizer) || p.IncomeNormalizer <= 0:
		return fmt.Errorf("%w: income normalizer must be positive", common.ErrInvalidConfig)
	case !finite(p.AvgTransactionCeiling) || p.AvgTransactionCeiling < 0:
		return fmt.Errorf("%w: average transaction ceiling must be non-negative", common.ErrInvalidConfig)
	case !finite(p.DTIThreshold) || p.DTIThreshold <= 0:
		return fmt.Errorf("%w: DTI threshold must be positive", common.ErrInvalidConfig)
	case !finite(p.LowBalanceFloor):
		return fmt.Errorf("%w: low balance floor must be a number", common.ErrInvalidConfig)
	case p.SafeProduct == "":
		return fmt.Errorf("%w: safe product", common.ErrMissingConfig)
	case model.IsGatedProduct(p.SafeProduct):
		return fmt.Errorf("%w: safe product %q is itself gated", common.ErrInvalidConfig, p.SafeProduct)
	case p.ClassifierTimeout < 0:
		return fmt.Errorf("%w: classifier timeout must not be negative", common.ErrInvalidConfig)
	}

	if !p.IncomeUnit.Valid() {
		return fmt.Errorf("%w: income unit %q", common.ErrInvalidConfig, p.IncomeUnit)
	}

	return nil
}

// LoadPolicy loads the scoring policy from Viper.
// It follows this precedence:
// 1. Flags bound to the policy.* keys
// 2. FINPULSE_POLICY_* environment variables and the config file
// 3. Default values
func LoadPolicy() (Policy, error) {
	return LoadPolicyFrom(viper.GetViper())
}

// LoadPolicyFrom loads the scoring policy from a specific Viper instance.
func LoadPolicyFrom(v *viper.Viper) (Policy, error) {
	policy := DefaultPolicy()

	if v.IsSet("policy.high_spend_threshold") {
		policy.HighSpendThreshold = v.GetFloat64("policy.high_spend_threshold")
	}
	if v.IsSet("policy.saver_threshold") {
		policy.SaverThreshold = v.GetFloat64("policy.saver_threshold")
	}
	if v.IsSet("policy.income_normalizer") {
		policy.IncomeNormalizer = v.GetFloat64("policy.income_normalizer")
	}
	if v.IsSet("policy.avg_transaction_ceiling") {
		policy.AvgTransactionCeiling = v.GetFloat64("policy.avg_transaction_ceiling")
	}
	if v.IsSet("policy.dti_threshold") {
		policy.DTIThreshold = v.GetFloat64("policy.dti_threshold")
	}
	if v.IsSet("policy.low_balance_floor") {
		policy.LowBalanceFloor = v.GetFloat64("policy.low_balance_floor")
	}
	if s := v.GetString("policy.safe_product"); s != "" {
		policy.SafeProduct = s
	}
	if v.IsSet("policy.classifier_timeout") {
		policy.ClassifierTimeout = v.GetDuration("policy.classifier_timeout")
	}
	if s := v.GetString("policy.income_unit"); s != "" {
		policy.IncomeUnit = model.IncomeUnit(s)
	}

	if err := policy.Validate(); err != nil {
		return Policy{}, err
	}

	return policy, nil
}

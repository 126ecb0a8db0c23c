package main

import (
	"fmt"
	"os"

	"github.com/Veraticus/finpulse/internal/common"
	"github.com/Veraticus/finpulse/internal/engine"
	"github.com/Veraticus/finpulse/internal/model"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// customerInput is the per-customer context that does not come from the statement.
type customerInput struct {
	DTI              *float64 `yaml:"dti"`
	CustomerID       string   `yaml:"customer_id"`
	Income           string   `yaml:"income"`
	Obligation       string   `yaml:"obligation"`
	ObligationPeriod string   `yaml:"obligation_period"` // annual or monthly; empty means the policy income unit
	Description      string   `yaml:"description"`
	Age              int      `yaml:"age"`
}

func (c customerInput) request(transactions []model.Transaction) (engine.Request, error) {
	income := decimal.Zero
	if c.Income != "" {
		parsed, err := decimal.NewFromString(c.Income)
		if err != nil {
			return engine.Request{}, common.InvalidInputf("income %q is not a number", c.Income)
		}
		income = parsed
	}

	req := engine.Request{
		Transactions: transactions,
		Description:  c.Description,
		DTIRatio:     c.DTI,
		Profile: model.Profile{
			CustomerID: c.CustomerID,
			Age:        c.Age,
			Income:     income,
		},
	}

	if c.Obligation != "" {
		obligation, err := decimal.NewFromString(c.Obligation)
		if err != nil {
			return engine.Request{}, common.InvalidInputf("obligation %q is not a number", c.Obligation)
		}
		req.ProposedObligation = &obligation
		req.ObligationUnit = model.IncomeUnit(c.ObligationPeriod)
	}

	return req, nil
}

// loadProfiles reads a YAML list of customer inputs keyed by customer id.
func loadProfiles(path string) (map[string]customerInput, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is supplied by the operator
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles: %w", err)
	}

	var list []customerInput
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse profiles: %w", err)
	}

	profiles := make(map[string]customerInput, len(list))
	for _, p := range list {
		if p.CustomerID == "" {
			return nil, common.InvalidInputf("profile without customer_id in %s", path)
		}
		profiles[p.CustomerID] = p
	}
	return profiles, nil
}

package llm

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/Veraticus/finpulse/internal/model"
	"github.com/Veraticus/finpulse/internal/persona"
)

const systemPrompt = "You are a banking analyst assistant that classifies customers. " +
	"You MUST respond with ONLY a valid JSON object. Do not include any explanatory text, " +
	"markdown formatting, or commentary before or after the JSON."

// classificationJSON is the reply the model is asked for.
type classificationJSON struct {
	Persona    string          `json:"persona"`
	LifeEvent  string          `json:"life_event"`
	Reason     string          `json:"reason"`
	Confidence json.RawMessage `json:"confidence"`
}

// buildPrompt renders the request as a plain-text brief.
func buildPrompt(req persona.Request) string {
	in := req.Insights
	var sb strings.Builder

	sb.WriteString("Classify this bank customer from their transaction summary.\n\n")
	sb.WriteString("Summary:\n")
	fmt.Fprintf(&sb, "- Total spend: %s\n", in.TotalSpend.StringFixed(2))
	fmt.Fprintf(&sb, "- Average transaction: %s\n", in.AvgTransaction.StringFixed(2))
	fmt.Fprintf(&sb, "- Salary detected: %t\n", in.SalaryDetected)
	fmt.Fprintf(&sb, "- Travel transactions: %d\n", in.TravelFrequency)
	fmt.Fprintf(&sb, "- Investment activity: %t\n", in.InvestmentInterest)
	fmt.Fprintf(&sb, "- Stability score: %.2f\n", in.StabilityScore)
	fmt.Fprintf(&sb, "- Risk level: %s\n", in.RiskLevel)

	if len(in.CategoryCounts) > 0 {
		sb.WriteString("- Transactions per category:")
		for _, c := range sortedCategories(in.CategoryCounts) {
			fmt.Fprintf(&sb, " %s=%d", c, in.CategoryCounts[c])
		}
		sb.WriteString("\n")
	}
	if req.Profile != nil && req.Profile.Age > 0 {
		fmt.Fprintf(&sb, "- Age: %d\n", req.Profile.Age)
	}
	if d := strings.TrimSpace(req.Description); d != "" {
		fmt.Fprintf(&sb, "\nAnalyst note: %s\n", d)
	}

	sb.WriteString("\nRespond with JSON containing:\n")
	sb.WriteString(`- "persona": one of student, spender, saver, credit_dependent, general` + "\n")
	sb.WriteString(`- "life_event": one of higher_education, frequent_traveler, renter, employed, dining_out, shopping, unknown` + "\n")
	sb.WriteString(`- "confidence": integer from 0 to 100` + "\n")
	sb.WriteString(`- "reason": one sentence explaining the classification` + "\n")

	return sb.String()
}

func sortedCategories(counts map[model.Category]int) []model.Category {
	out := make([]model.Category, 0, len(counts))
	for c := range counts {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// parseClassification decodes a model reply. Enum and range checks are left to persona.Normalize.
func parseClassification(content string) (model.ClassifierResult, error) {
	var resp classificationJSON
	if err := json.Unmarshal([]byte(cleanMarkdownWrapper(content)), &resp); err != nil {
		return model.ClassifierResult{}, fmt.Errorf("failed to parse JSON response: %w", err)
	}
	if resp.Persona == "" {
		return model.ClassifierResult{}, fmt.Errorf("no persona found in response")
	}

	return model.ClassifierResult{
		Persona:    model.Persona(resp.Persona),
		LifeEvent:  model.LifeEvent(resp.LifeEvent),
		Confidence: parseConfidence(resp.Confidence),
		Reason:     resp.Reason,
		Source:     model.SourceModel,
	}, nil
}

// parseConfidence accepts 0-100 integers, floats, and 0-1 fractions.
func parseConfidence(raw json.RawMessage) int {
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		var s string
		if json.Unmarshal(raw, &s) != nil {
			return 0
		}
		if _, err := fmt.Sscanf(strings.TrimSuffix(strings.TrimSpace(s), "%"), "%g", &v); err != nil {
			return 0
		}
	}
	if v > 0 && v < 1 {
		v *= 100
	}
	return int(v + 0.5)
}

// cleanMarkdownWrapper strips ``` fences and any text around the outermost JSON object.
func cleanMarkdownWrapper(content string) string {
	s := strings.TrimSpace(content)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start != -1 && end > start {
		s = s[start : end+1]
	}

	return strings.TrimSpace(s)
}

// cacheKey hashes everything that can change the model's answer.
func cacheKey(scope, prompt string) string {
	sum := sha256.Sum256([]byte(scope + "\x00" + prompt))
	return hex.EncodeToString(sum[:])
}

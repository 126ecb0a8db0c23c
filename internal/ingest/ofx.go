package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/Veraticus/finpulse/internal/model"
	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
)

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	// Opening tags at end of line that lost their closing bracket.
	tagFixRegex = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// OFXReader reads OFX/QFX bank and credit card statements.
type OFXReader struct {
	detector *CategoryDetector
	logger   *slog.Logger
}

// NewOFXReader creates an OFX reader that infers categories with detector.
func NewOFXReader(detector *CategoryDetector, logger *slog.Logger) *OFXReader {
	if logger == nil {
		logger = slog.Default()
	}
	return &OFXReader{detector: detector, logger: logger}
}

// preprocess fixes common formatting issues in bank exports.
func preprocess(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

// Read parses every statement in r into transactions.
func (o *OFXReader) Read(ctx context.Context, r io.Reader) ([]model.Transaction, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocess(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var transactions []model.Transaction
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		bankStmts++
		transactions = append(transactions, o.convertAll(stmt.BankTranList.Transactions)...)
	}

	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		ccStmts++
		transactions = append(transactions, o.convertAll(stmt.BankTranList.Transactions)...)
	}

	o.logger.Debug("Parsed OFX file",
		"total_transactions", len(transactions),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return transactions, nil
}

func (o *OFXReader) convertAll(in []ofxgo.Transaction) []model.Transaction {
	out := make([]model.Transaction, 0, len(in))
	for _, tx := range in {
		converted, err := o.convert(tx)
		if err != nil {
			o.logger.Warn("Skipping OFX transaction", "fitid", tx.FiTID, "error", err)
			continue
		}
		out = append(out, converted)
	}
	return out
}

func (o *OFXReader) convert(tx ofxgo.Transaction) (model.Transaction, error) {
	// OFX signs debits negative; the engine works on magnitudes.
	amount, err := decimal.NewFromString(tx.TrnAmt.FloatString(2))
	if err != nil {
		return model.Transaction{}, fmt.Errorf("invalid amount: %w", err)
	}

	description := describe(tx)
	return model.Transaction{
		ID:          string(tx.FiTID),
		Date:        tx.DtPosted.Time,
		Description: description,
		Amount:      amount.Abs(),
		Category:    o.categorize(description, tx),
	}, nil
}

// categorize falls back on the OFX transaction type when no description pattern matches.
func (o *OFXReader) categorize(description string, tx ofxgo.Transaction) model.Category {
	if c := o.detector.Detect(description); c != model.CategoryOther {
		return c
	}

	switch tx.TrnType {
	case ofxgo.TrnTypeDirectDep:
		return model.CategorySalary
	case ofxgo.TrnTypeXfer:
		return model.CategoryTransfer
	case ofxgo.TrnTypePayment:
		return model.CategoryPayment
	default:
		return model.CategoryOther
	}
}

var cardPrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"MC PURCHASE ",
	"DEBIT PURCHASE ",
}

var genericNames = map[string]bool{
	"DEBIT":           true,
	"CREDIT":          true,
	"PURCHASE":        true,
	"PAYMENT":         true,
	"POS TRANSACTION": true,
	"CARD PURCHASE":   true,
}

// describe picks the most useful merchant text of a transaction.
func describe(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := strings.TrimSpace(string(tx.Name))
	if tx.Memo != "" && genericNames[strings.ToUpper(name)] {
		name = strings.TrimSpace(string(tx.Memo))
	}

	for _, prefix := range cardPrefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// Leading "MM/DD " posting dates
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	return name
}

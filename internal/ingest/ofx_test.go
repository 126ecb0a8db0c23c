package ingest

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/finpulse/internal/model"
	"github.com/aclindsa/ofxgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBankOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-25.50
<FITID>2024011501
<NAME>POS PURCHASE STARBUCKS STORE #1234
</STMTTRN>
<STMTTRN>
<TRNTYPE>DIRECTDEP
<DTPOSTED>20240120120000[0:GMT]
<TRNAMT>4200.00
<FITID>2024012001
<NAME>ACME CORP
</STMTTRN>
<STMTTRN>
<TRNTYPE>CHECK
<DTPOSTED>20240125120000[0:GMT]
<TRNAMT>-500.00
<FITID>2024012501
<CHECKNUM>1234
<NAME>DEBIT
<MEMO>Monthly rent Oak St
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

func newTestOFXReader(t *testing.T) *OFXReader {
	t.Helper()
	detector, err := NewCategoryDetector(DefaultPatterns())
	require.NoError(t, err)
	return NewOFXReader(detector, nil)
}

func TestOFXReader_Read(t *testing.T) {
	transactions, err := newTestOFXReader(t).Read(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	require.Len(t, transactions, 3)

	coffee := transactions[0]
	assert.Equal(t, "2024011501", coffee.ID)
	assert.Equal(t, "STARBUCKS STORE #1234", coffee.Description)
	assert.Equal(t, "25.5", coffee.Amount.String())
	assert.Equal(t, model.CategoryFood, coffee.Category)
	assert.Equal(t, time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC), coffee.Date.UTC())

	// Unrecognized payee falls back to the transaction type.
	pay := transactions[1]
	assert.Equal(t, "4200", pay.Amount.String())
	assert.Equal(t, model.CategorySalary, pay.Category)

	// Generic names are replaced by the memo.
	rent := transactions[2]
	assert.Equal(t, "Monthly rent Oak St", rent.Description)
	assert.Equal(t, model.CategoryRent, rent.Category)
	assert.False(t, rent.Amount.IsNegative())
}

func TestOFXReader_CategorizeFallsBackOnTransactionType(t *testing.T) {
	reader := newTestOFXReader(t)

	tests := []struct {
		name        string
		description string
		tx          ofxgo.Transaction
		want        model.Category
	}{
		{name: "direct deposit", description: "ACME CORP", tx: ofxgo.Transaction{TrnType: ofxgo.TrnTypeDirectDep}, want: model.CategorySalary},
		{name: "transfer", description: "ACCT 4411", tx: ofxgo.Transaction{TrnType: ofxgo.TrnTypeXfer}, want: model.CategoryTransfer},
		{name: "payment", description: "BILLPAY 88", tx: ofxgo.Transaction{TrnType: ofxgo.TrnTypePayment}, want: model.CategoryPayment},
		{name: "plain debit", description: "CHECK 1234", tx: ofxgo.Transaction{TrnType: ofxgo.TrnTypeDebit}, want: model.CategoryOther},
		{name: "description wins over type", description: "DELTA AIRLINES", tx: ofxgo.Transaction{TrnType: ofxgo.TrnTypeDirectDep}, want: model.CategoryTravel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, reader.categorize(tt.description, tt.tx))
		})
	}
}

func TestOFXReader_FixesMixedCaseSeverity(t *testing.T) {
	content := strings.Replace(sampleBankOFX, "<SEVERITY>INFO\n</STATUS>\n<DTSERVER>",
		"<SEVERITY>Info</SEVERITY>\n</STATUS>\n<DTSERVER>", 1)

	transactions, err := newTestOFXReader(t).Read(context.Background(), strings.NewReader("\n\n"+content))
	require.NoError(t, err)
	assert.Len(t, transactions, 3)
}

func TestOFXReader_InvalidInput(t *testing.T) {
	_, err := newTestOFXReader(t).Read(context.Background(), strings.NewReader("not an ofx file"))
	require.Error(t, err)
}

func TestPreprocess(t *testing.T) {
	got := preprocess("  \n<SEVERITY>Warn</SEVERITY>\n<BANKID\n")
	assert.Equal(t, "<SEVERITY>WARN</SEVERITY>\n<BANKID>\n", got)
}

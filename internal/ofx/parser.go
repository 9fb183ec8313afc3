package ofx

import (
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/IlyasAtabaev731/finance-dashboard/internal/domain/models"
	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
)

const uncategorized = "Uncategorized"

// amountPrecision keeps every digit a statement amount can carry.
const amountPrecision = 16

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)`)
	openTagRegex  = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// Parser turns OFX/QFX statements into transaction create requests.
type Parser struct {
	logger *slog.Logger
}

func NewParser(logger *slog.Logger) *Parser {
	return &Parser{logger: logger}
}

// Parse reads bank and credit card statements from r. The returned inputs
// carry no identity; the caller fills it in before sending them.
func (p *Parser) Parse(r io.Reader) ([]models.TransactionInput, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocess(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	inputs := make([]models.TransactionInput, 0)
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		bankStmts++
		for _, tx := range stmt.BankTranList.Transactions {
			inputs = append(inputs, convert(tx))
		}
	}

	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		ccStmts++
		for _, tx := range stmt.BankTranList.Transactions {
			inputs = append(inputs, convert(tx))
		}
	}

	p.logger.Debug("Parsed OFX file",
		slog.Int("transactions", len(inputs)),
		slog.Int("bank_statements", bankStmts),
		slog.Int("cc_statements", ccStmts),
	)

	return inputs, nil
}

// preprocess fixes the formatting mistakes banks commonly ship.
func preprocess(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)
	return openTagRegex.ReplaceAllString(content, "$1>")
}

func convert(tx ofxgo.Transaction) models.TransactionInput {
	amount := decimal.NewFromBigRat(&tx.TrnAmt.Rat, amountPrecision)

	kind := string(models.TransactionIncome)
	if amount.IsNegative() {
		kind = string(models.TransactionExpense)
	}
	amount = amount.Abs()

	category := categoryOf(tx)
	description := describe(tx)
	date := tx.DtPosted.UTC().Format(time.RFC3339)

	return models.TransactionInput{
		Type:        &kind,
		Amount:      &amount,
		Category:    &category,
		Description: &description,
		Date:        &date,
	}
}

func describe(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}
	if name := strings.TrimSpace(string(tx.Name)); name != "" {
		return name
	}
	return strings.TrimSpace(string(tx.Memo))
}

func categoryOf(tx ofxgo.Transaction) string {
	switch tx.TrnType {
	case ofxgo.TrnTypeInt:
		return "Interest"
	case ofxgo.TrnTypeFee:
		return "Fees"
	case ofxgo.TrnTypeATM:
		return "Cash"
	case ofxgo.TrnTypeDep, ofxgo.TrnTypeDirectDep:
		return "Deposit"
	default:
		return uncategorized
	}
}

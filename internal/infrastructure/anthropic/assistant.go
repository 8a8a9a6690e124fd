package anthropic

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"flowfunds/internal/domain/assistant"
	"flowfunds/internal/domain/transaction"
)

const (
	assistantMaxTokens = 500

	// The prompt lists at most this many transactions, newest first.
	assistantPromptTransactions = 20

	assistantSystem = `You are the FlowFunds assistant, a friendly money coach inside a personal finance app.

FlowFunds tracks money across Mobile Money, Orange Money, cash and bank accounts. Users record
income, expenses and savings; a "save" moves money into their savings account. The home screen
shows the total balance and the accounts screen shows daily income and expense graphs.

When asked how to use the app, explain it in plain steps: add an account from the Accounts screen,
then use "Add Transaction" and pick Income, Expense or Save with an amount, a reason and an account.

Answer questions about the user's accounts, transactions and spending using only the data given.
Never invent figures. Reply in 2 to 4 short sentences, like a text message, with no markdown.
Write amounts like "50,000 XAF" and dates like "January 15" or "last week".
Be warm and encouraging and give one practical tip when it helps.`
)

var printer = message.NewPrinter(language.English)

// Assistant answers chat questions from a snapshot of the user's finances.
type Assistant struct {
	client *Client
}

func NewAssistant(client *Client) *Assistant {
	return &Assistant{client: client}
}

func (a *Assistant) Answer(ctx context.Context, question string, snap assistant.Snapshot) (string, error) {
	return a.client.complete(ctx, request{
		system:      assistantSystem,
		prompt:      assistantPrompt(question, snap),
		maxTokens:   assistantMaxTokens,
		temperature: 0.3,
	})
}

func assistantPrompt(question string, snap assistant.Snapshot) string {
	income, expenses := snap.Totals()

	var b strings.Builder
	printer.Fprintf(&b, "User: %s\n\n", snap.UserName)
	printer.Fprintf(&b, "TOTAL BALANCE: %s XAF\n\n", xaf(snap.TotalBalance))

	b.WriteString("ACCOUNTS:\n")
	if len(snap.Accounts) == 0 {
		b.WriteString("No accounts\n")
	}
	for _, acc := range snap.Accounts {
		printer.Fprintf(&b, "- %s (%s): %s XAF\n", acc.Name, strings.ToUpper(acc.Type), xaf(acc.Balance))
	}

	b.WriteString("\nTRANSACTIONS (last 30 days):\n")
	if len(snap.Transactions) == 0 {
		b.WriteString("No recent transactions\n")
	}
	for i, t := range snap.Transactions {
		if i == assistantPromptTransactions {
			break
		}
		printer.Fprintf(&b, "%s: %s%s XAF - %s\n", t.Date.Format("Jan 02"), sign(t.Type), xaf(t.Amount), t.Reason)
	}

	b.WriteString("\nLAST 30 DAYS:\n")
	printer.Fprintf(&b, "- Income: %s XAF\n", xaf(income))
	printer.Fprintf(&b, "- Expenses: %s XAF\n", xaf(expenses))
	printer.Fprintf(&b, "- Net change: %s XAF\n", xaf(income.Sub(expenses)))
	printer.Fprintf(&b, "- Transactions: %d\n", len(snap.Transactions))

	b.WriteString("\nQUESTION:\n")
	b.WriteString(question)
	b.WriteString("\n\nAnswer from the data above and use the actual numbers.")
	return b.String()
}

// xaf rounds to whole francs and groups thousands: 50000.40 -> "50,000".
func xaf(d decimal.Decimal) string {
	return printer.Sprintf("%d", d.Round(0).IntPart())
}

func sign(typ string) string {
	switch typ {
	case transaction.TypeIncome:
		return "+"
	case transaction.TypeExpense:
		return "-"
	case transaction.TypeSave:
		return "→"
	default:
		return "?"
	}
}

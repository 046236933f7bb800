// File: app/statement.go
package app

import (
	"fmt"
	"go-bank-ledger/model"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
)

// RenderStatement writes the history of account as a table followed by its
// current balance.
func RenderStatement(out io.Writer, account *model.Account, history []*model.Transaction) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"ID", "Type", "Amount", "Timestamp"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, t := range history {
		table.Append([]string{
			strconv.FormatInt(t.TransactionID, 10),
			string(t.Type),
			fmt.Sprintf("%.2f", t.Amount),
			t.Timestamp.Format(time.DateTime),
		})
	}
	table.Render()

	fmt.Fprintf(out, "%s\n", account)
}

// RenderAccounts writes one row per account.
func RenderAccounts(out io.Writer, accounts []*model.Account) {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Account", "Balance"})

	for _, acc := range accounts {
		table.Append([]string{strconv.Itoa(acc.AccountID), fmt.Sprintf("%.2f", acc.Balance)})
	}
	table.Render()
}

package salesforce

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// Account represents a Salesforce Account record, carrying the fields the
// tenant importer maps. YearStarted is a string picklist in Salesforce.
type Account struct {
	ID                string  `json:"Id" salesforce:"Id"`
	Name              string  `json:"Name" salesforce:"Name"`
	Industry          string  `json:"Industry" salesforce:"Industry"`
	AnnualRevenue     float64 `json:"AnnualRevenue" salesforce:"AnnualRevenue"`
	NumberOfEmployees int     `json:"NumberOfEmployees" salesforce:"NumberOfEmployees"`
	Ownership         string  `json:"Ownership" salesforce:"Ownership"`
	YearStarted       string  `json:"YearStarted" salesforce:"YearStarted"`
	BillingCity       string  `json:"BillingCity" salesforce:"BillingCity"`
	BillingState      string  `json:"BillingState" salesforce:"BillingState"`
}

// accountFields are the SOQL fields selected for Account queries.
var accountFields = []string{
	"Id", "Name", "Industry", "AnnualRevenue", "NumberOfEmployees",
	"Ownership", "YearStarted", "BillingCity", "BillingState",
}

// QueryAccounts fetches Account records, optionally constrained by a SOQL
// WHERE clause. A limit of zero or less omits the LIMIT clause.
func QueryAccounts(ctx context.Context, c Client, where string, limit int) ([]Account, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM Account", strings.Join(accountFields, ", "))
	if where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(where)
	}
	if limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", limit)
	}

	var accounts []Account
	if err := c.Query(ctx, sb.String(), &accounts); err != nil {
		return nil, eris.Wrap(err, "sf: query accounts")
	}
	return accounts, nil
}

// escapeSoql escapes single quotes in SOQL string literals to prevent injection.
func escapeSoql(s string) string {
	return strings.ReplaceAll(s, "'", "\\'")
}

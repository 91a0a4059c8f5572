package setup

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/vadiminshakov/xroute/config"
	"github.com/vadiminshakov/xroute/internal/domain"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)

	boxStyle = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1)
)

const header = "XROUTE EXCHANGE WIZARD"

// RunTUI asks for the target currency and the amount to obtain and stores them in c.
func RunTUI(c *config.Config) error {
	targets := targetOptions(c.Rates)
	if len(targets) == 0 {
		return fmt.Errorf("no currency to exchange into")
	}

	target := c.Target
	amountStr := "10"
	if c.Amount.IsPositive() {
		amountStr = c.Amount.String()
	}
	var confirm bool

	// step 1: target
	clearScreen()
	fmt.Println(headerStyle.Render(header))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Pick what you want to end up with.\n"))
	fmt.Println(boxStyle.Render(BalancesSummary(c.Balances)))
	fmt.Println(stepStyle.Render("STEP 1: TARGET"))

	options := make([]huh.Option[string], 0, len(targets))
	for _, currency := range targets {
		options = append(options, huh.NewOption(currency, currency))
	}
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Currency to obtain").
				Options(options...).
				Value(&target),
		),
	).Run()
	if err != nil {
		return err
	}

	// step 2: amount
	clearScreen()
	fmt.Println(headerStyle.Render(header))
	fmt.Println(stepStyle.Render("STEP 2: AMOUNT"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("Amount of %s", target)).
				Description("Whole balance of the best source is used when not enough is held").
				Value(&amountStr).
				Validate(validateAmount),
		),
	).Run()
	if err != nil {
		return err
	}

	// confirmation
	clearScreen()
	fmt.Println(headerStyle.Render(header))
	fmt.Println(stepStyle.Render("FINAL CONFIRMATION"))

	summary := fmt.Sprintf("Target: %s\nAmount: %s\nFee: %s\n", target, amountStr, c.Fee.String())
	fmt.Println(boxStyle.Render(summary))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Run exchange?").
				Affirmative("Yes, exchange").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}

	if !confirm {
		return fmt.Errorf("exchange cancelled by user")
	}

	amount, _ := decimal.NewFromString(amountStr)
	c.Target = target
	c.Amount = amount
	return nil
}

// RenderExchanges formats the applied hops and resulting balances.
func RenderExchanges(exchanges []domain.Exchange, balances []domain.Balance) string {
	var b strings.Builder
	b.WriteString(stepStyle.Render("EXCHANGES"))
	b.WriteString("\n")
	for _, ex := range exchanges {
		b.WriteString(ex.String())
		b.WriteString("\n")
	}
	b.WriteString(stepStyle.Render("BALANCES"))
	b.WriteString("\n")
	b.WriteString(boxStyle.Render(BalancesSummary(balances)))
	return b.String()
}

// RenderHistory formats journaled exchanges, oldest first.
func RenderHistory(entries []domain.ExchangeRecordEntry) string {
	var b strings.Builder
	b.WriteString(stepStyle.Render("HISTORY"))
	b.WriteString("\n")
	if len(entries) == 0 {
		b.WriteString("no exchanges recorded\n")
		return b.String()
	}
	for _, e := range entries {
		rec := e.Record
		fmt.Fprintf(&b, "#%d %s spent %s %s, received %s %s via %s\n",
			e.Index,
			rec.Timestamp.Format(time.RFC3339),
			rec.Spent().String(), rec.Source,
			rec.Received().String(), rec.Target,
			strings.Join(rec.Route, " -> "))
	}
	return b.String()
}

// BalancesSummary lists balances one per line.
func BalancesSummary(balances []domain.Balance) string {
	if len(balances) == 0 {
		return "no balances"
	}
	lines := make([]string, 0, len(balances))
	for _, bal := range balances {
		lines = append(lines, fmt.Sprintf("%s: %s", bal.Currency, bal.Amount.String()))
	}
	return strings.Join(lines, "\n")
}

// targetOptions lists graph currencies that are reachable by at least one rate.
func targetOptions(rates *domain.RateGraph) []string {
	if rates == nil {
		return nil
	}

	incoming := make(map[string]bool)
	for _, node := range rates.Nodes() {
		for _, e := range rates.Neighbours(node) {
			incoming[e.To] = true
		}
	}

	targets := make([]string, 0, len(incoming))
	for _, node := range rates.Nodes() {
		if incoming[node] {
			targets = append(targets, node)
		}
	}
	return targets
}

func validateAmount(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("must be a valid number")
	}
	if !d.IsPositive() {
		return fmt.Errorf("must be greater than 0")
	}
	return nil
}

func clearScreen() {
	fmt.Print("\033[H\033[2J")
}

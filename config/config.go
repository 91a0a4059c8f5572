package config

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/vadiminshakov/xroute/internal/domain"
	"github.com/vadiminshakov/xroute/internal/services/rates"
)

const (
	defaultConfigPath        = "config.example.yaml"
	defaultDivisionPrecision = 28
	defaultLogLevel          = "info"
)

// Config is a single exchange scenario.
type Config struct {
	Fee               decimal.Decimal
	Target            string
	Amount            decimal.Decimal
	DivisionPrecision int32
	LogLevel          string
	JournalDir        string
	Balances          []domain.Balance
	Rates             *domain.RateGraph
	Wizard            bool
	History           bool
}

// ConfigTmp mirrors the yaml layout. Balances and rates are kept as nodes so
// that currency order in the file becomes ledger and graph order.
type ConfigTmp struct {
	Fee               string    `yaml:"fee"`
	Target            string    `yaml:"target,omitempty"`
	Amount            string    `yaml:"amount,omitempty"`
	DivisionPrecision int32     `yaml:"division_precision,omitempty"`
	LogLevel          string    `yaml:"log_level,omitempty"`
	JournalDir        string    `yaml:"journal_dir,omitempty"`
	Balances          yaml.Node `yaml:"balances"`
	Rates             yaml.Node `yaml:"rates"`
}

// Get reads the scenario from command-line arguments.
func Get() (Config, error) {
	return Parse(os.Args[1:])
}

// Parse reads flags from args, loads the referenced yaml file and applies flag overrides.
func Parse(args []string) (Config, error) {
	fs := flag.NewFlagSet("xroute", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	path := fs.String("config", defaultConfigPath, "path to yaml scenario")
	target := fs.String("target", "", "currency to obtain, example: ETH")
	amount := fs.String("amount", "", "amount of target currency to obtain, example: 10")
	wizard := fs.Bool("wizard", false, "choose target and amount interactively")
	history := fs.Bool("history", false, "print exchanges recorded in the journal and exit")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	f, err := os.ReadFile(*path)
	if err != nil {
		return Config{}, fmt.Errorf("read scenario %s (set --config): %w", *path, err)
	}

	c, err := parseYaml(f)
	if err != nil {
		return Config{}, err
	}

	c.Wizard = *wizard
	c.History = *history
	if *target != "" {
		c.Target = *target
	}
	if *amount != "" {
		a, err := decimal.NewFromString(*amount)
		if err != nil {
			return Config{}, fmt.Errorf("invalid --amount provided, --amount=%s", *amount)
		}
		c.Amount = a
	}

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks the scenario. Target and amount may stay empty when the wizard
// is used or only the history is printed.
func (c Config) Validate() error {
	if c.History {
		if c.JournalDir == "" {
			return fmt.Errorf("'journal_dir' param is required to print history")
		}
		return nil
	}

	if err := rates.ValidateFee(c.Fee); err != nil {
		return err
	}
	if c.DivisionPrecision <= 0 {
		return fmt.Errorf("incorrect 'division_precision' param: %d, must be positive", c.DivisionPrecision)
	}
	if c.Rates == nil || c.Rates.EdgeCount() == 0 {
		return fmt.Errorf("'rates' param in yaml config has no rates")
	}
	if err := rates.Validate(c.Rates); err != nil {
		return err
	}
	for _, b := range c.Balances {
		if b.Amount.IsNegative() {
			return fmt.Errorf("incorrect %s balance %s: %w", b.Currency, b.Amount.String(), domain.ErrNegativeAmount)
		}
	}
	if c.Wizard {
		return nil
	}
	if c.Target == "" {
		return fmt.Errorf("target currency is required, use --target or 'target' param")
	}
	if !c.Amount.IsPositive() {
		return fmt.Errorf("incorrect amount %s: %w", c.Amount.String(), domain.ErrInvalidAmount)
	}
	return nil
}

// Ledger builds a ledger from the configured balances.
func (c Config) Ledger() (*domain.Ledger, error) {
	return domain.NewLedger(c.Balances...)
}

func parseYaml(data []byte) (Config, error) {
	var tmp ConfigTmp
	if err := yaml.Unmarshal(data, &tmp); err != nil {
		return Config{}, err
	}

	c := Config{
		Target:            tmp.Target,
		DivisionPrecision: tmp.DivisionPrecision,
		LogLevel:          tmp.LogLevel,
		JournalDir:        tmp.JournalDir,
	}
	if c.DivisionPrecision == 0 {
		c.DivisionPrecision = defaultDivisionPrecision
	}
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}

	var err error
	if tmp.Fee != "" {
		c.Fee, err = decimal.NewFromString(tmp.Fee)
		if err != nil {
			return Config{}, fmt.Errorf("incorrect 'fee' param in yaml config (correct format is 0.01), error: %w", err)
		}
	}
	if tmp.Amount != "" {
		c.Amount, err = decimal.NewFromString(tmp.Amount)
		if err != nil {
			return Config{}, fmt.Errorf("incorrect 'amount' param in yaml config, error: %w", err)
		}
	}

	c.Balances, err = parseBalances(&tmp.Balances)
	if err != nil {
		return Config{}, err
	}
	c.Rates, err = parseRates(&tmp.Rates)
	if err != nil {
		return Config{}, err
	}

	return c, nil
}

func parseBalances(n *yaml.Node) ([]domain.Balance, error) {
	pairs, err := mappingPairs(n, "balances", true)
	if err != nil {
		return nil, err
	}

	balances := make([]domain.Balance, 0, len(pairs))
	for _, kv := range pairs {
		amount, err := decimal.NewFromString(kv[1].Value)
		if err != nil {
			return nil, fmt.Errorf("incorrect %s balance in yaml config, error: %w", kv[0].Value, err)
		}
		balances = append(balances, domain.Balance{Currency: kv[0].Value, Amount: amount})
	}
	return balances, nil
}

func parseRates(n *yaml.Node) (*domain.RateGraph, error) {
	g := domain.NewGraph[decimal.Decimal]()

	pairs, err := mappingPairs(n, "rates", false)
	if err != nil {
		return nil, err
	}
	for _, kv := range pairs {
		from := kv[0].Value
		g.AddNode(from)

		neighbours, err := mappingPairs(kv[1], "rates."+from, true)
		if err != nil {
			return nil, err
		}
		for _, nkv := range neighbours {
			rate, err := decimal.NewFromString(nkv[1].Value)
			if err != nil {
				return nil, fmt.Errorf("incorrect %s->%s rate in yaml config, error: %w", from, nkv[0].Value, err)
			}
			g.SetEdge(from, nkv[0].Value, rate)
		}
	}
	return g, nil
}

// mappingPairs returns key/value node pairs of a yaml mapping in document order.
// A missing or null node is an empty mapping.
func mappingPairs(n *yaml.Node, field string, scalarValues bool) ([][2]*yaml.Node, error) {
	if n.Kind == yaml.DocumentNode && len(n.Content) == 1 {
		n = n.Content[0]
	}
	if n.Kind == 0 || (n.Kind == yaml.ScalarNode && n.Tag == "!!null") {
		return nil, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("'%s' param in yaml config must be a mapping (line %d)", field, n.Line)
	}

	pairs := make([][2]*yaml.Node, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, value := n.Content[i], n.Content[i+1]
		if key.Kind != yaml.ScalarNode || key.Value == "" {
			return nil, fmt.Errorf("'%s' param in yaml config has an invalid key (line %d)", field, key.Line)
		}
		if scalarValues && value.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("'%s.%s' param in yaml config must be a number (line %d)", field, key.Value, value.Line)
		}
		pairs = append(pairs, [2]*yaml.Node{key, value})
	}
	return pairs, nil
}

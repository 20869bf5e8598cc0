package shop

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/thev1ndu/xp/config"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.]{1,32}$`)

// ValidUsername reports whether username is safe to place in a console command
func ValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

// Commands renders console commands and holds the classifiers for their responses
type Commands struct {
	balance  string
	exists   string
	withdraw string
	deposit  string
	grant    string

	Debit        Classifier
	PlayerLookup Classifier
	Grant        Classifier
	Refund       Classifier
}

// NewCommands builds the command vocabulary from configuration
func NewCommands(cfg config.CommandsConfig) *Commands {
	return &Commands{
		balance:  cfg.Balance,
		exists:   cfg.Exists,
		withdraw: cfg.Withdraw,
		deposit:  cfg.Deposit,
		grant:    cfg.Grant,

		Debit:        MarkerClassifier{Marker: cfg.DebitSuccessMarker, OnMatch: OutcomeApplied},
		PlayerLookup: MarkerClassifier{Marker: cfg.PlayerMissingMarker, OnMatch: OutcomeRejected},
		Grant:        AcceptingClassifier{},
		Refund:       AcceptingClassifier{},
	}
}

// DefaultCommands returns the vocabulary for EssentialsX economy and AureliumSkills
func DefaultCommands() *Commands {
	var cfg config.CommandsConfig
	cfg.SetDefaults()
	return NewCommands(cfg)
}

func render(tmpl, player string, args ...string) string {
	pairs := append([]string{"{player}", player}, args...)
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

// Balance renders the balance query
func (c *Commands) Balance(player string) string {
	return render(c.balance, player)
}

// Exists renders the player existence check
func (c *Commands) Exists(player string) string {
	return render(c.exists, player)
}

// Withdraw renders the currency withdrawal
func (c *Commands) Withdraw(player string, amount decimal.Decimal) string {
	return render(c.withdraw, player, "{amount}", amount.String())
}

// Deposit renders the currency deposit
func (c *Commands) Deposit(player string, amount decimal.Decimal) string {
	return render(c.deposit, player, "{amount}", amount.String())
}

// GrantXP renders the XP grant
func (c *Commands) GrantXP(player, skill string, xp int64) string {
	return render(c.grant, player, "{skill}", skill, "{xp}", strconv.FormatInt(xp, 10))
}

package command

import (
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/curvectl/internal/core/domain"
	"github.com/yndnr/curvectl/pkg/curve"
)

// QuoteCommand returns the quote command, which prices a swap from given
// reserves without touching the network.
func QuoteCommand() *cli.Command {
	return &cli.Command{
		Name:  "quote",
		Usage: "Price a swap against given curve reserves",
		Flags: []cli.Flag{
			&cli.Uint64Flag{Name: "reserve-token", Usage: "Token reserve in base units"},
			&cli.Uint64Flag{Name: "reserve-lamport", Usage: "Lamport reserve"},
			&cli.Uint64Flag{Name: "curve-limit", Usage: "Lamports that complete the curve; buys are clipped as a swap would be (0 for none)"},
			&cli.UintFlag{Name: "decimals", Usage: "Token decimals", Value: 6},
			&cli.StringFlag{Name: "amount", Aliases: []string{"a"}, Usage: "Amount in"},
			&cli.StringFlag{Name: "style", Aliases: []string{"s"}, Usage: "0 to buy, 1 to sell"},
			&cli.Float64Flag{Name: "fee", Usage: "Platform fee percent for the swap side"},
		},
		Action: quoteAction,
	}
}

// quoteResult is printed by quote.
type quoteResult struct {
	Direction string         `json:"direction" yaml:"direction"`
	Reserves  curve.Reserves `json:"reserves" yaml:"reserves"`
	Quote     curve.Quote    `json:"quote" yaml:"quote"`
}

func quoteAction(c *cli.Context) error {
	if !c.IsSet("amount") {
		return domain.ErrMissingAmount
	}
	if !c.IsSet("style") {
		return domain.ErrMissingStyle
	}
	amount, err := strconv.ParseUint(c.String("amount"), 10, 64)
	if err != nil || amount == 0 {
		return domain.ErrInvalidAmount.WithDetails(strconv.Quote(c.String("amount")))
	}
	style, err := domain.ParseSwapStyle(c.String("style"))
	if err != nil {
		return domain.ErrInvalidStyle.WithDetails(err.Error())
	}
	if !c.IsSet("reserve-token") || !c.IsSet("reserve-lamport") {
		return domain.ErrQuoteInput.WithDetails("--reserve-token and --reserve-lamport are required")
	}
	decimals := c.Uint("decimals")
	if decimals > 255 {
		return domain.ErrQuoteInput.WithDetails("decimals must fit in a byte")
	}

	rt, err := setup(c)
	if err != nil {
		return err
	}

	reserves := curve.Reserves{
		Token:      c.Uint64("reserve-token"),
		Lamport:    c.Uint64("reserve-lamport"),
		CurveLimit: c.Uint64("curve-limit"),
	}
	fee := c.Float64("fee")
	quote, err := curve.AmountOut(reserves, amount, uint8(decimals), uint8(style), curve.Fees{Buy: fee, Sell: fee})
	if err != nil {
		return domain.ErrQuoteInput.Wrap(err)
	}

	return rt.Print(&quoteResult{Direction: style.String(), Reserves: reserves, Quote: quote})
}

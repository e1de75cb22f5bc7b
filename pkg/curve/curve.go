// Package curve computes bonding-curve swap quotes.
//
// The math follows the on-chain program exactly, including its detour
// through float64 with decimal scaling, so a quote matches what the
// program will pay out rather than the ideal constant-product value.
package curve

import (
	"errors"
	"math"
)

// LamportDecimals is the number of decimals of SOL.
const LamportDecimals = 9

// Direction of a swap as encoded on chain.
const (
	Buy  uint8 = 0
	Sell uint8 = 1
)

var (
	ErrInvalidAmount = errors.New("curve: amount must be greater than zero")
	ErrInvalidFee    = errors.New("curve: fee percent must be in [0, 100)")
	ErrEmptyReserves = errors.New("curve: reserves must be non-zero")
	ErrOverflow      = errors.New("curve: overflow or underflow occurred")
	ErrCurveComplete = errors.New("curve: bonding curve is complete")
)

// Reserves is the state of one bonding curve.
type Reserves struct {
	Token   uint64 `json:"reserve_token" yaml:"reserve_token"`
	Lamport uint64 `json:"reserve_lamport" yaml:"reserve_lamport"`
	// CurveLimit caps the lamports a curve accepts; buys are clipped to the
	// remaining room, as swap does on chain. Zero disables the cap, which
	// is what simulate_swap quotes against.
	CurveLimit uint64 `json:"curve_limit,omitempty" yaml:"curve_limit,omitempty"`
}

// Fees are platform fee percentages, e.g. 1.0 for 1%.
type Fees struct {
	Buy  float64 `json:"buy_fee" yaml:"buy_fee"`
	Sell float64 `json:"sell_fee" yaml:"sell_fee"`
}

// Quote is the result of AmountOut.
type Quote struct {
	// AmountIn is the amount actually swapped after clipping to the curve
	// limit, before fees.
	AmountIn uint64 `json:"amount_in" yaml:"amount_in"`
	// Adjusted is AmountIn net of the platform fee.
	Adjusted  uint64 `json:"adjusted_amount" yaml:"adjusted_amount"`
	AmountOut uint64 `json:"amount_out" yaml:"amount_out"`
}

// AmountOut quotes a swap of amount against r. tokenDecimals is the mint's
// decimals; direction is Buy (SOL in, tokens out) or Sell.
func AmountOut(r Reserves, amount uint64, tokenDecimals uint8, direction uint8, fees Fees) (Quote, error) {
	if amount == 0 {
		return Quote{}, ErrInvalidAmount
	}
	if r.Token == 0 || r.Lamport == 0 {
		return Quote{}, ErrEmptyReserves
	}

	feePercent := fees.Buy
	if direction == Sell {
		feePercent = fees.Sell
	}
	if feePercent < 0 || feePercent >= 100 || math.IsNaN(feePercent) {
		return Quote{}, ErrInvalidFee
	}

	if direction != Sell && r.CurveLimit > 0 {
		if r.Lamport >= r.CurveLimit {
			return Quote{}, ErrCurveComplete
		}
		amount = min(amount, r.CurveLimit-r.Lamport)
	}

	adjusted := FromFloat(ToFloat(amount, tokenDecimals)/100*(100-feePercent), tokenDecimals)
	if adjusted == 0 {
		return Quote{}, ErrInvalidAmount
	}

	q := Quote{AmountIn: amount, Adjusted: adjusted}
	if direction == Sell {
		denom, ok := checkedAdd(r.Token, adjusted)
		if !ok {
			return Quote{}, ErrOverflow
		}
		div := ToFloat(denom, tokenDecimals) / ToFloat(adjusted, tokenDecimals)
		q.AmountOut = FromFloat(ToFloat(r.Lamport, LamportDecimals)/div, LamportDecimals)
		return q, nil
	}

	denom, ok := checkedAdd(r.Lamport, adjusted)
	if !ok {
		return Quote{}, ErrOverflow
	}
	div := ToFloat(denom, LamportDecimals) / ToFloat(adjusted, LamportDecimals)
	q.AmountOut = FromFloat(ToFloat(r.Token, tokenDecimals)/div, tokenDecimals)
	return q, nil
}

// ToFloat converts a base-unit amount to a decimal value.
func ToFloat(v uint64, decimals uint8) float64 {
	return float64(v) / math.Pow10(int(decimals))
}

// FromFloat converts a decimal value back to base units, truncating.
// Negative values map to zero and values past the u64 range saturate,
// like a float-to-int cast on chain.
func FromFloat(v float64, decimals uint8) uint64 {
	scaled := v * math.Pow10(int(decimals))
	switch {
	case scaled <= 0 || math.IsNaN(scaled):
		return 0
	case scaled >= math.MaxUint64:
		return math.MaxUint64
	}
	return uint64(scaled)
}

func checkedAdd(a, b uint64) (uint64, bool) {
	s := a + b
	return s, s >= a
}

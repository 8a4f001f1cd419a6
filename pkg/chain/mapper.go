package chain

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
)

// UnmarshalJSON accepts ["<key>", amount] tuples and {"key":..,"amount":..} objects.
func (s *StakeEntry) UnmarshalJSON(data []byte) error {
	var tuple []any
	if err := sonic.Unmarshal(data, &tuple); err == nil {
		if len(tuple) != 2 {
			return fmt.Errorf("expected tuple of length 2, got %d", len(tuple))
		}

		key, ok := tuple[0].(string)
		if !ok {
			return fmt.Errorf("expected string for key, got %T", tuple[0])
		}
		s.Key = key

		amount, err := stakeAmount(tuple[1])
		if err != nil {
			return err
		}
		s.Amount = amount
		return nil
	}

	var obj struct {
		Key    string `json:"key"`
		Amount any    `json:"amount"`
	}
	if err := sonic.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("stake entry must be a tuple or object: %w", err)
	}
	amount, err := stakeAmount(obj.Amount)
	if err != nil {
		return err
	}
	s.Key = obj.Key
	s.Amount = amount
	return nil
}

// stakeAmount keeps fractional numbers and parses decimal or hex strings.
func stakeAmount(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		if v < 0 {
			return 0, fmt.Errorf("negative amount: %v", v)
		}
		return v, nil
	case string:
		var amount Amount
		if err := amount.parseString(v); err != nil {
			return 0, err
		}
		return amount.Float64(), nil
	default:
		return 0, fmt.Errorf("expected number for amount, got %T", raw)
	}
}

// UnmarshalJSON implements custom JSON unmarshaling for Amount
func (a *Amount) UnmarshalJSON(data []byte) error {
	a.Value = new(big.Int)

	var num float64
	if err := sonic.Unmarshal(data, &num); err == nil {
		if num < 0 {
			return fmt.Errorf("negative amount: %v", num)
		}
		new(big.Float).SetFloat64(num).Int(a.Value)
		return nil
	}

	var str string
	if err := sonic.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("amount must be a number or string, got: %s", string(data))
	}
	return a.parseString(str)
}

func (a *Amount) parseString(str string) error {
	a.Value = new(big.Int)

	if strings.HasPrefix(str, "0x") || strings.HasPrefix(str, "0X") {
		if _, ok := a.Value.SetString(str[2:], 16); !ok {
			return fmt.Errorf("invalid hex amount: %s", str)
		}
		return nil
	}

	if _, ok := a.Value.SetString(str, 10); !ok {
		return fmt.Errorf("invalid amount string: %s", str)
	}
	if a.Value.Sign() < 0 {
		return fmt.Errorf("negative amount: %s", str)
	}
	return nil
}

// Float64 returns the amount, saturating at MaxFloat64.
func (a Amount) Float64() float64 {
	if a.Value == nil {
		return 0
	}
	f, _ := new(big.Float).SetInt(a.Value).Float64()
	if math.IsInf(f, 1) {
		return math.MaxFloat64
	}
	return f
}

// uidKeyed converts a JSON object keyed by decimal uid strings.
func uidKeyed[T any](in map[string]T) (map[int]T, error) {
	out := make(map[int]T, len(in))
	for k, v := range in {
		uid, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("invalid uid key %q: %w", k, err)
		}
		out[uid] = v
	}
	return out, nil
}

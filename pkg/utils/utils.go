package utils

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/params"
)

func TruncateString(str string, num int) string {
	if len(str) <= num {
		return str
	}
	if num <= 3 {
		return str[:num]
	}
	return str[0:num-3] + "..."
}

// ShortAddress renders 0x1234...abcd for narrow layouts.
func ShortAddress(addr string) string {
	if len(addr) <= 12 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}

// FormatEther renders a wei amount as an exact decimal ether string with
// trailing zeros removed, e.g. 1500000000000000000 -> "1.5".
func FormatEther(wei *big.Int) string {
	return FormatUnits(wei, 18)
}

// FormatUnits renders value / 10^decimals exactly.
func FormatUnits(value *big.Int, decimals int) string {
	if value == nil {
		return "0"
	}
	sign := ""
	v := new(big.Int).Set(value)
	if v.Sign() < 0 {
		sign = "-"
		v.Neg(v)
	}
	divisor := big.NewInt(params.Ether)
	if decimals != 18 {
		divisor = new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	}
	whole, frac := new(big.Int).QuoRem(v, divisor, new(big.Int))
	if frac.Sign() == 0 || decimals == 0 {
		return sign + whole.String()
	}
	fs := frac.String()
	fs = strings.Repeat("0", decimals-len(fs)) + fs
	fs = strings.TrimRight(fs, "0")
	return sign + whole.String() + "." + fs
}

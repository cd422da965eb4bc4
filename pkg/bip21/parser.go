// Package bip21 implements the BIP 21 payment request URI format.
//
// BIP 21 defines a URI format for Bitcoin payment requests. It allows
// encoding payment information (recipient address, amount, label, message)
// in a URI that can be shared via QR codes, links, or text.
//
// URI Format:
//
//	bitcoin:<address>?amount=<amount>&label=<label>&message=<message>
//
// Amounts are decimal BTC with at most 8 fractional digits and are carried
// as exact satoshi values. Parameters prefixed with "req-" that are not
// understood make the request invalid.
//
// See: https://github.com/bitcoin/bips/blob/master/bip-0021.mediawiki
package bip21

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/suffix-labs/btc-p2pkh/pkg/address"
	"github.com/suffix-labs/btc-p2pkh/pkg/tx"
)

// Scheme is the URI scheme of a payment request.
const Scheme = "bitcoin"

const (
	satoshisPerBitcoin = 100_000_000
	amountDecimals     = 8

	// MaxMoney is the largest amount a request may carry, in satoshis.
	MaxMoney = tx.MaxMoney
)

// PaymentRequest represents a parsed BIP 21 payment request.
type PaymentRequest struct {
	Address string            // Base58Check P2PKH address
	Amount  *uint64           // Amount in satoshis (nil = user specifies)
	Label   *string           // Optional label for recipient
	Message *string           // Optional message to display to user
	Extra   map[string]string // Other optional parameters, kept for Encode
}

// Parse parses a BIP 21 payment request URI.
//
// The scheme is matched case-insensitively. The address must be a valid
// P2PKH address on either network.
//
// Example:
//
//	req, err := bip21.Parse("bitcoin:mnNcaVkC35ezZSgvn8fhXEa9QTHSUtPfzQ?amount=0.251")
func Parse(uri string) (*PaymentRequest, error) {
	scheme, rest, ok := strings.Cut(uri, ":")
	if !ok || !strings.EqualFold(scheme, Scheme) {
		return nil, fmt.Errorf("missing %q scheme", Scheme+":")
	}

	addr, query, _ := strings.Cut(rest, "?")
	if addr == "" {
		return nil, fmt.Errorf("missing address")
	}
	if _, _, err := address.DecodeP2PKH(addr); err != nil {
		return nil, fmt.Errorf("invalid address %q: %w", addr, err)
	}

	params, err := url.ParseQuery(query)
	if err != nil {
		return nil, fmt.Errorf("failed to parse query: %w", err)
	}

	req := &PaymentRequest{Address: addr}
	for key, values := range params {
		if len(values) != 1 {
			return nil, fmt.Errorf("parameter %q given %d times", key, len(values))
		}
		value := values[0]

		switch key {
		case "amount":
			amount, err := ParseAmount(value)
			if err != nil {
				return nil, fmt.Errorf("invalid amount: %w", err)
			}
			req.Amount = &amount
		case "label":
			req.Label = &value
		case "message":
			req.Message = &value
		default:
			if strings.HasPrefix(key, "req-") {
				return nil, fmt.Errorf("unsupported required parameter %q", key)
			}
			if req.Extra == nil {
				req.Extra = make(map[string]string)
			}
			req.Extra[key] = value
		}
	}

	return req, nil
}

// ParseAmount parses a decimal BTC amount into satoshis.
//
// Valid formats:
//   - "1.5" (decimal BTC)
//   - "0.00000001" (one satoshi)
//   - "1000" (whole BTC)
//
// No floating point is involved; more than 8 fractional digits is an error.
func ParseAmount(s string) (uint64, error) {
	whole, frac, hasPoint := strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return 0, fmt.Errorf("empty amount")
	}
	if hasPoint && frac == "" {
		return 0, fmt.Errorf("amount %q has no digits after the point", s)
	}
	if len(frac) > amountDecimals {
		return 0, fmt.Errorf("amount %q has more than %d decimals", s, amountDecimals)
	}
	if !allDigits(whole) || !allDigits(frac) {
		return 0, fmt.Errorf("amount %q is not a decimal number", s)
	}

	var btc uint64
	if whole != "" {
		var err error
		btc, err = strconv.ParseUint(whole, 10, 64)
		if err != nil || btc > MaxMoney/satoshisPerBitcoin {
			return 0, fmt.Errorf("amount %q exceeds %d BTC", s, MaxMoney/satoshisPerBitcoin)
		}
	}

	var sats uint64
	if frac != "" {
		padded := frac + strings.Repeat("0", amountDecimals-len(frac))
		sats, _ = strconv.ParseUint(padded, 10, 64)
	}

	total := btc*satoshisPerBitcoin + sats
	if total > MaxMoney {
		return 0, fmt.Errorf("amount %q exceeds %d BTC", s, MaxMoney/satoshisPerBitcoin)
	}
	return total, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Encode creates a BIP 21 URI from a PaymentRequest.
//
// This is the inverse of Parse(). Parameters are written in the order
// amount, label, message, then the extra parameters sorted by name.
//
// Example:
//
//	req := &PaymentRequest{Address: "1AqkkUTs4NUvjnNgkBAH5UHtdmekg3RZAJ", Amount: ptr(150_000_000)}
//	uri := req.Encode() // "bitcoin:1AqkkUTs4NUvjnNgkBAH5UHtdmekg3RZAJ?amount=1.5"
func (req *PaymentRequest) Encode() string {
	uri := Scheme + ":" + req.Address

	var params []string
	add := func(key, value string) {
		params = append(params, url.QueryEscape(key)+"="+url.QueryEscape(value))
	}

	if req.Amount != nil {
		add("amount", FormatAmount(*req.Amount))
	}
	if req.Label != nil {
		add("label", *req.Label)
	}
	if req.Message != nil {
		add("message", *req.Message)
	}

	keys := make([]string, 0, len(req.Extra))
	for k := range req.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		add(k, req.Extra[k])
	}

	if len(params) > 0 {
		uri += "?" + strings.Join(params, "&")
	}
	return uri
}

// FormatAmount formats satoshis as a decimal BTC amount.
//
// Removes unnecessary trailing zeros and decimal point.
func FormatAmount(sats uint64) string {
	str := fmt.Sprintf("%d.%08d", sats/satoshisPerBitcoin, sats%satoshisPerBitcoin)

	str = strings.TrimRight(str, "0")
	str = strings.TrimRight(str, ".")

	return str
}

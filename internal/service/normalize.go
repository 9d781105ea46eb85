package service

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/tourshop/internal/models"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// UpsellItem canonical upsell line. JSON input may use the compact {n,p,q}
// shape, the legacy {title,price,quantity} shape or {name,price,quantity}.
type UpsellItem struct {
	Name      string       `json:"name"`
	UnitPrice models.Money `json:"unitPrice"`
	Quantity  int          `json:"quantity"`
}

// UnmarshalJSON accepts every known upsell shape.
func (u *UpsellItem) UnmarshalJSON(b []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*u = NormalizeUpsell(raw)
	return nil
}

// NormalizeUpsell maps a loosely shaped upsell onto UpsellItem. A missing
// quantity counts as one; unparseable prices become zero and are dropped later.
func NormalizeUpsell(raw map[string]interface{}) UpsellItem {
	item := UpsellItem{Quantity: 1}
	item.Name = strings.TrimSpace(firstString(raw, "n", "name", "title"))
	if price, ok := firstDecimal(raw, "p", "unitPrice", "price"); ok {
		item.UnitPrice = models.NewMoneyFromDecimal(price)
	}
	if qty, ok := firstDecimal(raw, "q", "quantity"); ok {
		item.Quantity = int(qty.IntPart())
		if qty.GreaterThan(decimal.NewFromInt(maxUpsellQuantity)) {
			// out of range; dropped by ValidUpsells
			item.Quantity = 0
		}
	}
	return item
}

// NormalizeUpsells normalizes a list of raw upsells.
func NormalizeUpsells(raw []map[string]interface{}) []UpsellItem {
	return lo.Map(raw, func(item map[string]interface{}, _ int) UpsellItem {
		return NormalizeUpsell(item)
	})
}

// Upsell bounds. Lines outside them are dropped like non-positive ones, which
// keeps every line total far inside int64 minor units.
const maxUpsellQuantity = maxCartLineQuantity

var maxUpsellUnitPrice = decimal.NewFromInt(10000)

// ValidUpsells drops entries with a non-positive or out-of-range price or quantity.
func ValidUpsells(items []UpsellItem) []UpsellItem {
	return lo.Filter(items, func(item UpsellItem, _ int) bool {
		return item.Quantity > 0 && item.Quantity <= maxUpsellQuantity &&
			item.UnitPrice.GreaterThan(decimal.Zero) &&
			item.UnitPrice.LessThanOrEqual(maxUpsellUnitPrice)
	})
}

// ProfilePatch admin profile update; isAdmin and is_admin are both accepted.
type ProfilePatch struct {
	FullName *string
	Phone    *string
	Locale   *string
	IsAdmin  *bool
}

// UnmarshalJSON folds camelCase and snake_case keys onto one field set.
func (p *ProfilePatch) UnmarshalJSON(b []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*p = NormalizeProfilePatch(raw)
	return nil
}

// NormalizeProfilePatch maps raw keys to the canonical patch. When both flag
// spellings are present the snake_case value wins.
func NormalizeProfilePatch(raw map[string]interface{}) ProfilePatch {
	var patch ProfilePatch
	if v, ok := firstPresentString(raw, "full_name", "fullName"); ok {
		patch.FullName = &v
	}
	if v, ok := firstPresentString(raw, "phone"); ok {
		patch.Phone = &v
	}
	if v, ok := firstPresentString(raw, "locale"); ok {
		patch.Locale = &v
	}
	for _, key := range []string{"is_admin", "isAdmin"} {
		if v, ok := raw[key]; ok {
			if flag, ok := toBool(v); ok {
				patch.IsAdmin = &flag
				break
			}
		}
	}
	return patch
}

func firstString(raw map[string]interface{}, keys ...string) string {
	v, _ := firstPresentString(raw, keys...)
	return v
}

func firstPresentString(raw map[string]interface{}, keys ...string) (string, bool) {
	for _, key := range keys {
		switch v := raw[key].(type) {
		case string:
			return strings.TrimSpace(v), true
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), true
		}
	}
	return "", false
}

func firstDecimal(raw map[string]interface{}, keys ...string) (decimal.Decimal, bool) {
	for _, key := range keys {
		switch v := raw[key].(type) {
		case float64:
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return decimal.Zero, true
			}
			return decimal.NewFromFloat(v), true
		case string:
			parsed, err := models.ParseMoney(v)
			if err != nil {
				return decimal.Zero, true
			}
			return parsed.Decimal, true
		}
	}
	return decimal.Zero, false
}

func toBool(v interface{}) (bool, bool) {
	switch typed := v.(type) {
	case bool:
		return typed, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(typed))
		return parsed, err == nil
	case float64:
		return typed != 0, true
	default:
		return false, false
	}
}

package usecases

import "github.com/samirrijal/solarsite/internal/core/domain"

// UnknownSettlement is used when the address names no populated place.
const UnknownSettlement = "Unknown"

// SettlementName picks city, then town, village, hamlet.
func SettlementName(a domain.Address) string {
	for _, name := range []string{a.City, a.Town, a.Village, a.Hamlet} {
		if name != "" {
			return name
		}
	}
	return UnknownSettlement
}

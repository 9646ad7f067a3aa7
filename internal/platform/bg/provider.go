// Package bg talks to the hospitalization bureau (Бюро госпитализаций) over
// its SyncChannel SOAP interface.
package bg

import (
	"sort"
	"strings"
)

// Provider describes an upstream system and the credentials it expects.
type Provider struct {
	Code   string
	Label  string
	Params []string
}

// Subject describes one kind of data fetched from a provider.
type Subject struct {
	Code      string
	Label     string
	Provider  Provider
	ServiceID string
	// CacheKeyFields name the request params that identify a result.
	CacheKeyFields []string
}

var BureauProvider = Provider{
	Code:   "BG",
	Label:  "Бюро госпитализаций",
	Params: []string{"username", "password"},
}

var ReferralsSubject = Subject{
	Code:           "BG_REFERRALS",
	Label:          "БГ - Поиск направлений пациента",
	Provider:       BureauProvider,
	ServiceID:      DefaultServiceID,
	CacheKeyFields: []string{"patientIINorFIO", "dateFrom", "dateTo"},
}

// CacheKey renders a stable key for params. Field names are matched
// case-insensitively. Results are never cached; the key only labels logs.
func (s Subject) CacheKey(params map[string]string) string {
	parts := make([]string, 0, len(s.CacheKeyFields)+1)
	parts = append(parts, s.Code)

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, field := range s.CacheKeyFields {
		value := ""
		for _, k := range keys {
			if strings.EqualFold(k, field) {
				value = params[k]
				break
			}
		}
		parts = append(parts, field+"="+value)
	}
	return strings.Join(parts, ":")
}

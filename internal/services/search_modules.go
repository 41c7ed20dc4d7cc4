package services

import (
	"encoding/json"
	"net/url"
	"regexp"
	"strings"
)

type bodyScheme string

const (
	schemeQuery      bodyScheme = "query"
	schemeUniversal  bodyScheme = "universal"
	schemeSnusbase   bodyScheme = "snusbase"
	schemeLeakcheck  bodyScheme = "leakcheck"
	schemeHackcheck  bodyScheme = "hackcheck"
	schemeBreachbase bodyScheme = "breachbase"
	schemeShodan     bodyScheme = "shodan"
	schemeLeakosint  bodyScheme = "leakosint"
)

// SearchModule describes how one module maps onto a provider endpoint.
type SearchModule struct {
	Name     string
	Endpoint string
	Method   string
	Scheme   bodyScheme
	// SearchType is sent by leakcheck-style modules.
	SearchType string
}

func getModule(name, endpoint string) SearchModule {
	return SearchModule{Name: name, Endpoint: endpoint, Method: "GET", Scheme: schemeQuery}
}

func postModule(name, endpoint string, scheme bodyScheme) SearchModule {
	return SearchModule{Name: name, Endpoint: endpoint, Method: "POST", Scheme: scheme}
}

func leakcheckModule(name, searchType string) SearchModule {
	m := postModule(name, "/osintdog/leakcheck", schemeLeakcheck)
	m.SearchType = searchType
	return m
}

var searchModules = func() map[string]SearchModule {
	modules := []SearchModule{
		getModule("email-osint", "/osintcat/email-osint"),
		getModule("username-search", "/osintcat/username"),
		getModule("twitter-osint", "/osintcat/username"),
		getModule("phone-lookup", "/osintcat/phone-osint"),
		getModule("github-osint", "/osintcat/github-osint"),
		getModule("us-npd", "/osintcat/npd"),
		getModule("ip-lookup", "/osintcat/ip"),
		getModule("dns-resolver", "/osintcat/domain"),
		getModule("breach-lookup", "/osintcat/breach"),
		getModule("reddit-lookup", "/osintcat/reddit"),
		getModule("discord-lookup", "/osintcat/discord"),
		getModule("discord-monitor", "/osintcat/discord-stalker"),
		getModule("discord-roblox", "/osintcat/discord-to-roblox"),
		getModule("roblox-lookup", "/osintcat/roblox"),
		getModule("minecraft-lookup", "/osintcat/minecraft"),
		getModule("subdomain", "/osintcat/domain"),
		getModule("shodan", "/osintcat/ip"),

		postModule("datahound", "/osintdog/search", schemeUniversal),
		postModule("vin-lookup", "/osintdog/search", schemeUniversal),
		postModule("crowsint", "/osintdog/search", schemeUniversal),
		postModule("intelx-file", "/osintdog/search", schemeUniversal),
		postModule("intelx-id", "/osintdog/search", schemeUniversal),
		postModule("intelvault", "/osintdog/intelvault", schemeUniversal),
		postModule("stealer-logs", "/osintdog/snusbase", schemeSnusbase),
		leakcheckModule("email-breach", "email"),
		leakcheckModule("username-breach", "username"),
		leakcheckModule("phone-breach", "phone"),
		postModule("hackcheck", "/osintdog/hackcheck", schemeHackcheck),
		postModule("breachbase", "/osintdog/breachbase", schemeBreachbase),
		postModule("shodan-host", "/osintdog/shodan-host", schemeShodan),
		postModule("leakosint", "/leakosint-api", schemeLeakosint),
	}

	table := make(map[string]SearchModule, len(modules))
	for _, m := range modules {
		table[m.Name] = m
	}
	return table
}()

// LookupModule reports the module definition for name.
func LookupModule(name string) (SearchModule, bool) {
	m, ok := searchModules[name]
	return m, ok
}

var (
	ipv4Pattern   = regexp.MustCompile(`^\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}$`)
	digitsPattern = regexp.MustCompile(`^[0-9]+$`)
)

// GuessSearchField classifies a free-form query for universal search.
func GuessSearchField(query string) string {
	switch {
	case strings.Contains(query, "@"):
		return "email"
	case ipv4Pattern.MatchString(query):
		return "ip"
	case digitsPattern.MatchString(query) && len(query) > 7:
		return "phone"
	case strings.Contains(query, "."):
		return "domain"
	}
	return "username"
}

// QueryString builds the GET parameters for a module.
func (m SearchModule) QueryString(query string) string {
	params := url.Values{}
	switch m.Name {
	case "us-npd":
		parts := strings.Fields(query)
		if len(parts) >= 2 {
			params.Set("first_name", parts[0])
			params.Set("last_name", strings.Join(parts[1:], " "))
		} else {
			params.Set("first_name", strings.TrimSpace(query))
			params.Set("last_name", "")
		}
	case "minecraft-lookup":
		params.Set("query", query)
		params.Set("type", "username")
	default:
		params.Set("query", query)
	}
	return params.Encode()
}

// Body builds the JSON payload for a POST module. Hackcheck posts without a body.
func (m SearchModule) Body(query string) ([]byte, error) {
	var payload interface{}
	switch m.Scheme {
	case schemeUniversal:
		payload = map[string]string{"search_field": GuessSearchField(query), "search_value": query}
	case schemeSnusbase:
		payload = map[string]interface{}{
			"terms":    []string{query},
			"types":    []string{"email", "username", "lastip", "hash", "password"},
			"wildcard": true,
		}
	case schemeLeakcheck:
		payload = map[string]string{"term": query, "search_type": m.SearchType}
	case schemeBreachbase:
		payload = map[string]string{"term": query, "search_type": "email"}
	case schemeShodan:
		payload = map[string]string{"ip": query}
	case schemeLeakosint:
		payload = map[string]interface{}{"request": query, "limit": 100, "lang": "en"}
	default:
		return nil, nil
	}
	return json.Marshal(payload)
}

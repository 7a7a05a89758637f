package aiagent

import (
	"regexp"

	"github.com/ourstudio-se/ai-agent-backend/tools"
	"github.com/ourstudio-se/ai-agent-backend/tools/calc"
	"github.com/ourstudio-se/ai-agent-backend/tools/weather"
)

// MatchFn reports whether a rule applies to a query. It may return arguments
// it extracted along the way so the tool does not parse the query twice.
type MatchFn func(query string) (tools.Args, bool)

// Rule maps a predicate to the tool that handles matching queries.
type Rule struct {
	Kind  tools.Kind
	Match MatchFn
}

// weatherKeywords are matched as whole words, case-insensitively.
var weatherKeywords = regexp.MustCompile(`(?i)\b(?:weather|forecast|temperature|temperatures|humidity|raining|snowing)\b`)

// DefaultRules returns the classification rules in priority order:
// arithmetic first, then weather keywords. Queries matching neither go to
// the general tool.
func DefaultRules() []Rule {
	return []Rule{
		{Kind: tools.KindMath, Match: matchMath},
		{Kind: tools.KindWeather, Match: matchWeather},
	}
}

func matchMath(query string) (tools.Args, bool) {
	expr, ok := calc.Extract(query)
	if !ok {
		return nil, false
	}
	return tools.Args{calc.ArgExpression: expr}, true
}

func matchWeather(query string) (tools.Args, bool) {
	if !weatherKeywords.MatchString(query) {
		return nil, false
	}
	if loc, ok := weather.ExtractLocation(query); ok {
		return tools.Args{weather.ArgLocation: loc}, true
	}
	return tools.Args{}, true
}

// Router picks exactly one tool per query.
type Router struct {
	rules    []Rule
	fallback tools.Kind
}

// NewRouter creates a router over rules, evaluated in order. Queries no rule
// matches go to the general tool.
func NewRouter(rules []Rule) *Router {
	return &Router{
		rules:    rules,
		fallback: tools.KindGeneral,
	}
}

// Route returns the kind of the first matching rule and the arguments it
// extracted. It is deterministic and never fails.
func (r *Router) Route(query string) (tools.Kind, tools.Args) {
	for _, rule := range r.rules {
		if args, ok := rule.Match(query); ok {
			return rule.Kind, args
		}
	}
	return r.fallback, nil
}

package insights

import "fmt"

var curatedDrivers = []Point{
	{Title: "Monetary policy impact", Explanation: "Interest rate changes influence capital flows and exchange rates via carry trades and relative yield attractiveness."},
	{Title: "Inflation differentials", Explanation: "Higher inflation erodes purchasing power and typically weakens a currency over time versus trading partners."},
	{Title: "Trade balances", Explanation: "Persistent current account deficits can pressure a currency; surpluses can support it through demand for exports."},
	{Title: "Risk sentiment", Explanation: "Global risk-on/off cycles drive flows into safe havens (USD, JPY, CHF) or higher-yielding EM currencies."},
	{Title: "Commodity prices", Explanation: "Exporters/importers of oil or metals see currencies move with terms-of-trade shocks (e.g., NOK, CAD, AUD)."},
	{Title: "Political stability", Explanation: "Elections, policy uncertainty, or sanctions can add risk premia and volatility to FX markets."},
	{Title: "External debt levels", Explanation: "High FX-denominated debt raises rollover risk; depreciations can worsen debt burdens and amplify volatility."},
	{Title: "Central bank credibility", Explanation: "Clear communication and anchored expectations reduce surprises; weak credibility magnifies market reactions."},
	{Title: "Liquidity and market depth", Explanation: "Deep markets (USD/EUR) absorb shocks better than thinly traded pairs, moderating volatility."},
	{Title: "Speculative positioning", Explanation: "Crowded trades can unwind quickly, causing sharp moves when sentiment turns or data disappoints."},
}

const demoExtraExplanation = "Additional driver relevant to the user's query context."

// BuildDemo returns n points of canned currency-driver content without any network call.
func BuildDemo(n int) []Point {
	if n <= 0 {
		return []Point{}
	}

	out := make([]Point, 0, max(n, len(curatedDrivers)))
	out = append(out, curatedDrivers...)
	for len(out) < n {
		out = append(out, Point{
			Title:       fmt.Sprintf("Extra factor %d", len(out)+1),
			Explanation: demoExtraExplanation,
		})
	}

	return out[:n]
}

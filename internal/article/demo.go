package article

import "time"

// Demo returns the fixed article set served when every provider has failed
// and no cached batch exists. Timestamps are spaced backwards from now so the
// set still renders as a fresh, sorted feed.
func Demo(now time.Time) []Article {
	demo := []Article{
		{
			Title:       "Severe heatwave grips the capital as temperatures cross 45 degrees",
			Description: "The weather office has issued an orange alert. Residents are advised to stay indoors during the afternoon hours.",
			Source:      "City Samachar",
			Author:      "Weather Desk",
			Category:    "general",
			PublishedAt: now,
		},
		{
			Title:       "Metro opens new line with ten additional stations",
			Description: "The latest extension of the metro network was inaugurated today, easing the commute for thousands of passengers.",
			Source:      "Metro News",
			Author:      "Transport Desk",
			Category:    "general",
			PublishedAt: now.Add(-1 * time.Hour),
		},
		{
			Title:       "Police bust major gang in overnight operation, five arrested",
			Description: "The crime branch dismantled an organised gang after a month-long investigation. Five suspects are in custody.",
			Source:      "Crime Reporter",
			Author:      "Crime Desk",
			Category:    "general",
			PublishedAt: now.Add(-2 * time.Hour),
		},
		{
			Title:       "Government expands free bus pass scheme for students",
			Description: "The state government announced an expansion of its free travel scheme covering all enrolled students.",
			Source:      "Politics Desk",
			Author:      "Political Reporter",
			Category:    "general",
			PublishedAt: now.Add(-3 * time.Hour),
		},
		{
			Title:       "University admissions open online, registration deadline announced",
			Description: "Online registration for the coming academic year has started. Officials expect record applications.",
			Source:      "Education",
			Author:      "Education Desk",
			Category:    "general",
			PublishedAt: now.Add(-4 * time.Hour),
		},
		{
			Title:       "Old market prepares for the festive season as stalls go up",
			Description: "Traders in the old quarter have started decorating ahead of the festival rush, hoping for strong sales.",
			Source:      "City Market",
			Author:      "Market Reporter",
			Category:    "business",
			PublishedAt: now.Add(-5 * time.Hour),
		},
	}

	for i := range demo {
		demo[i].ID = MakeID(demo[i].Title, demo[i].Source)
		demo[i].ImageURL = DefaultImage(demo[i].Category)
		demo[i].URL = "#"
	}
	return demo
}

// Package i18n holds the French and English label sets.
package i18n

import (
	"golang.org/x/text/language"
)

// Labels is every user-facing string that differs by language.
type Labels struct {
	Lang language.Tag

	// Column titles of the journal, in sheet order (A through J).
	Columns [10]string

	Workouts     []string
	OtherWorkout string

	CurrentWeight string
	TotalLoss     string
	Progress      string
	GoalWeight    string
	WeeklyRate    string
	RateUnit      string
	Adherence     string
	Records       string

	Plan       string
	Actual     string
	Latest     string
	NoRecords  string
	NotWeighed string
	Saved      string
	Deleted    string
	Storage    string

	TabEntry    string
	TabJournal  string
	TabChart    string
	TabSettings string
}

var french = Labels{
	Lang: language.French,
	Columns: [10]string{
		"Date", "Poids (kg)", "Calories (kcal)", "Protéines (g)", "Lipides (g)",
		"Glucides (g)", "Type séance", "Fait (✅/❌)", "Pas", "Notes",
	},
	Workouts:     []string{"Force + Aquafit", "Marche 10 km", "Repos"},
	OtherWorkout: "Autre…",

	CurrentWeight: "Poids actuel",
	TotalLoss:     "Perte totale",
	Progress:      "Avancement",
	GoalWeight:    "Poids cible",
	WeeklyRate:    "Vitesse",
	RateUnit:      "kg/sem",
	Adherence:     "Assiduité",
	Records:       "Entrées",

	Plan:       "Plan",
	Actual:     "Réel",
	Latest:     "Dernières entrées",
	NoRecords:  "Aucune donnée pour l'instant.",
	NotWeighed: "non pesé",
	Saved:      "Entrée enregistrée",
	Deleted:    "Entrée supprimée",
	Storage:    "Stockage",

	TabEntry:    "Saisie",
	TabJournal:  "Journal",
	TabChart:    "Courbe",
	TabSettings: "Réglages",
}

var english = Labels{
	Lang: language.English,
	Columns: [10]string{
		"Date", "Weight (kg)", "Calories (kcal)", "Protein (g)", "Fat (g)",
		"Carbs (g)", "Workout", "Done (✅/❌)", "Steps", "Notes",
	},
	Workouts:     []string{"Strength + Aquafit", "Walk 10 km", "Rest"},
	OtherWorkout: "Other…",

	CurrentWeight: "Current weight",
	TotalLoss:     "Total loss",
	Progress:      "Progress",
	GoalWeight:    "Goal weight",
	WeeklyRate:    "Rate",
	RateUnit:      "kg/wk",
	Adherence:     "Adherence",
	Records:       "Entries",

	Plan:       "Plan",
	Actual:     "Actual",
	Latest:     "Latest entries",
	NoRecords:  "No data yet.",
	NotWeighed: "not weighed",
	Saved:      "Entry saved",
	Deleted:    "Entry deleted",
	Storage:    "Storage",

	TabEntry:    "Entry",
	TabJournal:  "Journal",
	TabChart:    "Chart",
	TabSettings: "Settings",
}

var (
	supported = []language.Tag{language.French, language.English}
	matcher   = language.NewMatcher(supported)
)

// For returns the label set best matching the given language preferences
// (BCP 47 tags or Accept-Language values). French is the fallback.
func For(prefs ...string) Labels {
	_, idx := language.MatchStrings(matcher, prefs...)
	if supported[idx] == language.English {
		return english
	}
	return french
}

// Header returns the column titles as a slice.
func (l Labels) Header() []string {
	return l.Columns[:]
}

// Package rules holds the ordered keyword tables that answer a question
// before any network lookup is attempted.
package rules

import (
	"strings"

	"github.com/papercomputeco/verde/pkg/exchange"
)

// Predicate decides whether a rule applies to a question.
type Predicate func(question string) bool

// Rule is a canned response guarded by a predicate.
type Rule struct {
	// Name identifies the rule in logs (usually the trigger keyword).
	Name string

	Match    Predicate
	Response string
	Category exchange.Category
}

// Contains returns a predicate matching questions that contain keyword,
// ignoring case.
func Contains(keyword string) Predicate {
	keyword = strings.ToLower(keyword)
	return func(question string) bool {
		return strings.Contains(strings.ToLower(question), keyword)
	}
}

// Keyword builds a containment rule named after its keyword.
func Keyword(keyword, response string, category exchange.Category) Rule {
	return Rule{
		Name:     keyword,
		Match:    Contains(keyword),
		Response: response,
		Category: category,
	}
}

// Table is an ordered list of rules. The first matching rule wins.
type Table struct {
	Name  string
	Rules []Rule
}

// Match returns the first rule in declaration order whose predicate accepts
// question.
func (t Table) Match(question string) (Rule, bool) {
	for _, r := range t.Rules {
		if r.Match(question) {
			return r, true
		}
	}
	return Rule{}, false
}

const (
	RecyclingTip = "🌱 **Consejo:** Separa papel, plástico, vidrio y orgánicos en contenedores distintos. ¡Reduce el uso de plásticos de un solo uso!"
	PollutionTip = "🌍 **Consejo:** Usa transporte público o bicicleta para reducir emisiones. Planta árboles para mejorar la calidad del aire."
	WaterTip     = "💧 **Consejo:** Cierra el grifo mientras te cepillas los dientes y usa regaderas de bajo flujo para ahorrar agua."

	Greeting      = "¡Hola! Soy IA Simple 2025, lista para ayudarte, especialmente con temas ambientales. 😊"
	WhatIsPending = "Estoy buscando la mejor respuesta para ti..."
)

// EnvironmentalTips answers recycling, pollution and water questions.
func EnvironmentalTips() Table {
	return Table{
		Name: "environmental",
		Rules: []Rule{
			Keyword("reciclaje", RecyclingTip, exchange.CategoryEnvironmental),
			Keyword("contaminación", PollutionTip, exchange.CategoryEnvironmental),
			Keyword("agua", WaterTip, exchange.CategoryEnvironmental),
		},
	}
}

// GeneralReplies answers greetings and "what is" questions.
func GeneralReplies() Table {
	return Table{
		Name: "general",
		Rules: []Rule{
			Keyword("hola", Greeting, exchange.CategoryGeneral),
			Keyword("qué es", WhatIsPending, exchange.CategoryGeneral),
		},
	}
}
